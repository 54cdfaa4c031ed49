package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

func TestSettingsHandler_GetSettings(t *testing.T) {
	settings := new(MockSettingsStore)
	settings.On("Get", mock.Anything).Return(&entity.GatewaySettings{
		SecretKey: "sk_test_secret",
		PublicKey: "pk_test_public",
	}, nil)

	rec := doRequest(t, newTestEcho(new(MockPaymentMethod), settings), http.MethodGet, "/api/v1/operator/settings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "pk_test_public", body["public_key"])
	assert.Equal(t, true, body["has_secret_key"])
	assert.NotContains(t, rec.Body.String(), "sk_test_secret")
}

func TestSettingsHandler_UpdateSettings(t *testing.T) {
	settings := new(MockSettingsStore)
	settings.On("Save", mock.Anything, mock.MatchedBy(func(input entity.SettingsInput) bool {
		return input.PredefinedAccount != nil && *input.PredefinedAccount == "house" &&
			input.SecretKey == nil && input.PublicKey == nil
	})).Return(&entity.GatewaySettings{PredefinedAccount: "house"}, nil)

	rec := doRequest(t, newTestEcho(new(MockPaymentMethod), settings), http.MethodPut, "/api/v1/operator/settings",
		`{"predefined_account":"house"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "house", body["predefined_account"])
	assert.Equal(t, false, body["has_secret_key"])
	settings.AssertExpectations(t)
}

func TestSettingsHandler_UpdateSettings_Keys(t *testing.T) {
	settings := new(MockSettingsStore)
	settings.On("Save", mock.Anything, mock.MatchedBy(func(input entity.SettingsInput) bool {
		return input.SecretKey != nil && *input.SecretKey == "sk_test_new" &&
			input.PublicKey != nil && *input.PublicKey == "pk_test_new" &&
			input.PredefinedAccount == nil
	})).Return(&entity.GatewaySettings{SecretKey: "sk_test_new", PublicKey: "pk_test_new"}, nil)

	rec := doRequest(t, newTestEcho(new(MockPaymentMethod), settings), http.MethodPut, "/api/v1/operator/settings",
		`{"secret_key":"sk_test_new","public_key":"pk_test_new"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk_test_new")
	settings.AssertExpectations(t)
}

func TestSettingsHandler_UpdateSettings_StoreError(t *testing.T) {
	settings := new(MockSettingsStore)
	settings.On("Save", mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

	rec := doRequest(t, newTestEcho(new(MockPaymentMethod), settings), http.MethodPut, "/api/v1/operator/settings",
		`{"public_key":"pk_test_new"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is locked")
}
