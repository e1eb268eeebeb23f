// controller/alert_rule_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/model"
	"github.com/tracebit-io/tracebit/service"
	"github.com/tracebit-io/tracebit/util"
)

type AlertRuleController struct {
	service service.IAlertRuleService
}

func NewAlertRuleController(s service.IAlertRuleService) *AlertRuleController {
	return &AlertRuleController{service: s}
}

func (ctrl *AlertRuleController) RegisterRoutes(r *gin.RouterGroup) {
	rules := r.Group("/alert-rules")
	{
		rules.POST("", ctrl.CreateAlertRule)
		rules.PUT("/:id", ctrl.UpdateAlertRule)
		rules.DELETE("/:id", ctrl.DeleteAlertRule)
		rules.GET("/:id", ctrl.GetAlertRuleByID)
		rules.GET("/startup/:startupId", ctrl.GetAlertRulesByStartup)
	}
}

func (ctrl *AlertRuleController) CreateAlertRule(c *gin.Context) {
	var req model.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	rule, err := ctrl.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.OK("Alert rule created successfully", rule))
}

func (ctrl *AlertRuleController) UpdateAlertRule(c *gin.Context) {
	id, ok := ctrl.ruleID(c)
	if !ok {
		return
	}

	var req model.AlertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	rule, err := ctrl.service.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Alert rule updated successfully", rule))
}

func (ctrl *AlertRuleController) DeleteAlertRule(c *gin.Context) {
	id, ok := ctrl.ruleID(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeleteRule(c.Request.Context(), id); err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Alert rule deleted successfully", nil))
}

func (ctrl *AlertRuleController) GetAlertRuleByID(c *gin.Context) {
	id, ok := ctrl.ruleID(c)
	if !ok {
		return
	}

	rule, err := ctrl.service.GetRuleByID(c.Request.Context(), id)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Alert rule retrieved successfully", rule))
}

// GetAlertRulesByStartup lists a tenant's active rules.
func (ctrl *AlertRuleController) GetAlertRulesByStartup(c *gin.Context) {
	startupID := c.Param("startupId")

	rules, err := ctrl.service.GetActiveRulesByStartup(c.Request.Context(), startupID)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Alert rules retrieved successfully", rules))
}

func (ctrl *AlertRuleController) ruleID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid alert rule ID", err)
		return 0, false
	}
	return id, true
}

func (ctrl *AlertRuleController) handleError(c *gin.Context, err error) {
	var verr *tb_errors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Error:   true,
			Message: verr.Message,
			Data:    gin.H{"fields": verr.Fields},
		})
	case errors.Is(err, tb_errors.ErrRuleNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Alert rule not found", err)
	case errors.Is(err, tb_errors.ErrRuleConflict):
		util.RespondWithError(c, http.StatusConflict, "An alert rule with this name already exists for the startup", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
