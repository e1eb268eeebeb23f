// router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tracebit-io/tracebit/controller"
	"github.com/tracebit-io/tracebit/middleware"
)

// SetupRouter wires the HTTP surface. Everything under /api/v1 sits
// behind the ingress gate; the health probe does not.
func SetupRouter(gate *middleware.APIKeyAuth, auditLogs *controller.AuditLogController, alertRules *controller.AlertRuleController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	api := r.Group("/api/v1")
	api.Use(gate.Middleware())

	auditLogs.RegisterRoutes(api)
	alertRules.RegisterRoutes(api)

	return r
}
