package handlers

import (
	"errors"
	"net/http"
	"strings"

	"devdesk/internal/service"

	"github.com/gin-gonic/gin"
)

const errMissingSystemType = "system_type is required"

// taskRequest is the payload of POST /api/v1/tasks (form or JSON).
type taskRequest struct {
	SystemType  string `form:"system_type" json:"system_type" binding:"required" example:"library management system"`
	ContentType string `form:"content_type" json:"content_type" example:"database"`
}

// @Summary      Generate content
// @Description  Unknown content types use a generic prompt. Failures answer with a fixed message.
// @Tags         relay
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        system_type   formData  string  true   "Subject system"
// @Param        content_type  formData  string  false  "architecture | database | code | test"
// @Success      200  {string}  string
// @Failure      400  {string}  string
// @Router       /generate [post]
func (h *Handler) generate(c *gin.Context) {
	systemType := strings.TrimSpace(c.PostForm("system_type"))
	if systemType == "" {
		c.String(http.StatusBadRequest, errMissingSystemType)
		return
	}
	contentType := c.PostForm("content_type")

	text, err := h.services.Relay.Generate(c.Request.Context(), systemType, contentType)
	if err != nil {
		if h.log != nil {
			h.log.Warnw("generate_failed", "system_type", systemType, "content_type", contentType, "user", currentUsername(c), "err", err)
		}
		text = service.FailureMessage
	}
	c.String(http.StatusOK, text)
}

// @Summary      Submit a generation task
// @Tags         tasks
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  taskRequest  true  "Task payload"
// @Success      202  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/tasks [post]
func (h *Handler) submitTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.SystemType) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingSystemType})
		return
	}

	task := h.services.Tasks.Submit(strings.TrimSpace(req.SystemType), req.ContentType)
	if h.log != nil {
		h.log.Infow("task_submitted", "task_id", task.ID, "user", currentUsername(c))
	}
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}

// @Summary      Get a generation task
// @Tags         tasks
// @Produce      json
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/tasks/{id} [get]
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.services.Tasks.Get(c.Param("id"))
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// @Summary      Cancel a generation task
// @Tags         tasks
// @Produce      json
// @Param        id  path  string  true  "Task id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/tasks/{id} [delete]
func (h *Handler) cancelTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Tasks.Cancel(id); err != nil {
		h.taskError(c, err)
		return
	}
	task, err := h.services.Tasks.Get(id)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskFinished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "task lookup failed", "task_lookup_failed", err)
	}
}
