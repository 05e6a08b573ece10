package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focussync/internal/middleware"
	"focussync/internal/model"
	"focussync/internal/service"
)

type TimeTrackingHandler struct {
	timeTrackingService *service.TimeTrackingService
}

type startRequest struct {
	TaskID      *string           `json:"task_id"`
	EventID     *string           `json:"event_id"`
	ProjectID   *string           `json:"project_id"`
	Description *string           `json:"description"`
	SessionType model.SessionType `json:"session_type"`
}

func NewTimeTrackingHandler(timeTrackingService *service.TimeTrackingService) *TimeTrackingHandler {
	return &TimeTrackingHandler{timeTrackingService: timeTrackingService}
}

func (h *TimeTrackingHandler) Start(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	log, apiErr := h.timeTrackingService.Start(c.Request.Context(), middleware.UserID(c), model.TimeTrackingStart{
		TaskID:      req.TaskID,
		EventID:     req.EventID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		SessionType: req.SessionType,
	})
	writeLog(c, http.StatusCreated, log, apiErr)
}

func (h *TimeTrackingHandler) Stop(c *gin.Context) {
	log, apiErr := h.timeTrackingService.Stop(c.Request.Context(), middleware.UserID(c))
	writeLog(c, http.StatusOK, log, apiErr)
}

func (h *TimeTrackingHandler) Pause(c *gin.Context) {
	log, apiErr := h.timeTrackingService.Pause(c.Request.Context(), middleware.UserID(c))
	writeLog(c, http.StatusOK, log, apiErr)
}

func (h *TimeTrackingHandler) Resume(c *gin.Context) {
	log, apiErr := h.timeTrackingService.Resume(c.Request.Context(), middleware.UserID(c))
	writeLog(c, http.StatusOK, log, apiErr)
}

func (h *TimeTrackingHandler) Cancel(c *gin.Context) {
	if apiErr := h.timeTrackingService.Cancel(c.Request.Context(), middleware.UserID(c)); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TimeTrackingHandler) GetActive(c *gin.Context) {
	log, apiErr := h.timeTrackingService.GetActive(c.Request.Context(), middleware.UserID(c))
	writeLog(c, http.StatusOK, log, apiErr)
}

func (h *TimeTrackingHandler) GetStats(c *gin.Context) {
	stats, apiErr := h.timeTrackingService.GetStats(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *TimeTrackingHandler) GetHistory(c *gin.Context) {
	limit := queryInt(c, "limit", 0)
	logs, apiErr := h.timeTrackingService.GetHistory(c.Request.Context(), middleware.UserID(c), limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
