package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
	appErrors "github.com/wekeepgrowing/ticket-payment/pkg/errors"
	"go.uber.org/zap"
)

// SettingsStore reads and validates the operator's gateway settings.
type SettingsStore interface {
	Get(ctx context.Context) (*entity.GatewaySettings, error)
	Save(ctx context.Context, input entity.SettingsInput) (*entity.GatewaySettings, error)
}

type SettingsHandler struct {
	settings SettingsStore
	logger   *zap.Logger
}

func NewSettingsHandler(settings SettingsStore, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

type updateSettingsRequest struct {
	SecretKey         *string `json:"secret_key" validate:"omitempty,max=255"`
	PublicKey         *string `json:"public_key" validate:"omitempty,max=255"`
	PredefinedAccount *string `json:"predefined_account" validate:"omitempty,max=64"`
}

// settingsResponse never carries the secret key itself.
type settingsResponse struct {
	PublicKey         string `json:"public_key"`
	PredefinedAccount string `json:"predefined_account"`
	HasSecretKey      bool   `json:"has_secret_key"`
}

// GetSettings handles GET /api/v1/operator/settings
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		appErrors.LogError(h.logger, err, "Failed to load gateway settings")
		return appErrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings handles PUT /api/v1/operator/settings
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	settings, err := h.settings.Save(c.Request().Context(), entity.SettingsInput{
		SecretKey:         req.SecretKey,
		PublicKey:         req.PublicKey,
		PredefinedAccount: req.PredefinedAccount,
	})
	if err != nil {
		appErrors.LogError(h.logger, err, "Failed to save gateway settings",
			zap.String("operator", operatorSubject(c)))
		return appErrors.ToHTTPError(err)
	}

	h.logger.Info("Gateway settings updated", zap.String("operator", operatorSubject(c)))
	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

func toSettingsResponse(settings *entity.GatewaySettings) settingsResponse {
	return settingsResponse{
		PublicKey:         settings.PublicKey,
		PredefinedAccount: settings.PredefinedAccount,
		HasSecretKey:      settings.SecretKey != "",
	}
}
