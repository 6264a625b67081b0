package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"momentum-backend/internal/chain/usecase"
)

func SetupRoutes(r *gin.Engine, fanout usecase.ChainFanoutUsecase) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Operator routes
		admin := api.Group("/admin")
		{
			// Manual expiry sweep, same semantics as the scheduled run
			admin.POST("/sweep", func(c *gin.Context) {
				deleted, err := fanout.SweepExpiredChains(c.Request.Context(), time.Now())
				if err != nil {
					log.Printf("[API] Manual sweep failed: %v", err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
					return
				}
				c.JSON(http.StatusOK, gin.H{"deleted": deleted})
			})
		}
	}
}
