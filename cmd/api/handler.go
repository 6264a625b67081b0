package api

import (
	"github.com/gin-gonic/gin"

	"momentum-backend/internal/chain/usecase"
)

// Handler owns the HTTP surface of the worker: a health check and the
// operator endpoints.
type Handler struct {
	engine *gin.Engine
}

// NewHandler creates the gin engine and wires the routes
func NewHandler(fanout usecase.ChainFanoutUsecase) *Handler {
	engine := gin.Default()
	SetupRoutes(engine, fanout)
	return &Handler{
		engine: engine,
	}
}

// Start runs the HTTP server on the given address
func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
