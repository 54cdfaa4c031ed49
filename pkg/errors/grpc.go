package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError converts err into a gRPC status error. AppErrors keep their code
// and message; errors that already carry a status pass through unchanged.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		_, grpcCode := GetCodeMapping(appErr.Code())
		return status.Error(codes.Code(grpcCode), appErr.Message())
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codes.Internal, "internal error")
}
