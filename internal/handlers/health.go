package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davidnrm/critiq/pkg/response"
)

// Health returns a simple status payload useful for readiness checks.
// Database reachability is reported but never fails the endpoint.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if db == nil {
			dbStatus = "unconfigured"
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unreachable"
		}

		response.Success(c, http.StatusOK, gin.H{
			"status":   "ok",
			"database": dbStatus,
		})
	}
}
