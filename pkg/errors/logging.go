package errors

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogError writes err as a structured log entry. AppErrors carry error_code and
// are logged at warn level when their code maps to a 4xx status.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	level := zapcore.ErrorLevel
	var appErr *AppError
	if As(err, &appErr) {
		allFields = append(allFields, zap.String("error_code", appErr.Code()))
		if status := ToHTTPStatus(appErr.Code()); status >= 400 && status < 500 {
			level = zapcore.WarnLevel
		}
	}

	allFields = append(allFields, fields...)

	if ce := logger.Check(level, msg); ce != nil {
		ce.Write(allFields...)
	}
}
