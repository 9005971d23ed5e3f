package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/platform/requestctx"
)

// Envelope is the canonical success wrapper returned by the API.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// WriteJSON serialises payload as JSON with the given HTTP status. Encoding
// failures are logged; headers are already gone by then.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		requestctx.Logger(ctx).Error("encode response", zap.Error(err))
	}
}

// WriteData wraps data in the success envelope and writes it with HTTP 200.
func WriteData(ctx context.Context, w http.ResponseWriter, data any) {
	WriteJSON(ctx, w, http.StatusOK, Envelope{
		Data:    data,
		Message: "success",
		Status:  http.StatusOK,
	})
}

// WriteNoContent writes the legacy empty-result envelope. The transport
// status stays 200; the envelope's status field carries 204 so existing
// storefront clients keep working.
func WriteNoContent(ctx context.Context, w http.ResponseWriter) {
	WriteJSON(ctx, w, http.StatusOK, Envelope{
		Message: "no content",
		Status:  http.StatusNoContent,
	})
}
