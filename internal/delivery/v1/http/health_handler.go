package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	storage Pinger
	logger  logger.Logger
}

func NewHealthHandler(storage Pinger, logger logger.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, logger: logger}
}

// healthz
//
//	@Summary	Проверка готовности
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/healthz [get]
func (h *HealthHandler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Errorf(err, "health check failed")
		WriteSuccess(w, http.StatusServiceUnavailable, NewErrorResponse("ERROR"))
		return
	}

	WriteSuccess(w, http.StatusOK, MessageResponse{Message: "ok"})
}
