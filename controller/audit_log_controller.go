// controller/audit_log_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tracebit-io/tracebit/crypto"
	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/model"
	"github.com/tracebit-io/tracebit/service"
	"github.com/tracebit-io/tracebit/util"
	helper_util "github.com/tracebit-io/tracebit/util/helper"
)

type AuditLogController struct {
	service service.IAuditLogService
}

func NewAuditLogController(s service.IAuditLogService) *AuditLogController {
	return &AuditLogController{service: s}
}

func (ctrl *AuditLogController) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/logs")
	{
		logs.POST("", ctrl.SubmitAuditLog)
		logs.GET("", ctrl.SearchAuditLogs)
		logs.GET("/:id", ctrl.GetAuditLogByID)
	}
}

// SubmitAuditLog validates and acknowledges an audit event. The event
// is persisted asynchronously after the response is sent.
func (ctrl *AuditLogController) SubmitAuditLog(c *gin.Context) {
	var req model.AuditLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := ctrl.service.Submit(c.Request.Context(), req); err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, model.OK("Audit log accepted", nil))
}

func (ctrl *AuditLogController) GetAuditLogByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid audit log ID", err)
		return
	}

	log, err := ctrl.service.GetByID(c.Request.Context(), id)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Audit log retrieved successfully", log))
}

// SearchAuditLogs lists events in a time window, optionally filtered by
// subject and action, newest first.
func (ctrl *AuditLogController) SearchAuditLogs(c *gin.Context) {
	page, size, err := helper_util.GetPageParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	from, err := helper_util.GetTimeParam(c, "from")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp, expected RFC3339", err)
		return
	}
	to, err := helper_util.GetTimeParam(c, "to")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp, expected RFC3339", err)
		return
	}

	q := model.AuditLogSearch{
		UserID: c.Query("userId"),
		Action: c.Query("action"),
		From:   from,
		To:     to,
		Page:   page,
		Size:   size,
	}

	logs, pagination, err := ctrl.service.Search(c.Request.Context(), q)
	if err != nil {
		ctrl.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.OK("Audit logs retrieved successfully", gin.H{
		"logs":       logs,
		"pagination": pagination,
	}))
}

func (ctrl *AuditLogController) handleError(c *gin.Context, err error) {
	var verr *tb_errors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Error:   true,
			Message: verr.Message,
			Data:    gin.H{"fields": verr.Fields},
		})
	case errors.Is(err, tb_errors.ErrAuditLogNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Audit log not found", err)
	case errors.Is(err, crypto.ErrDecryption):
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to read audit log", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
