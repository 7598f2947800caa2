package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusCleared = "cleared"

	errGetSchedules = "failed to load schedules"
	errNoTerminal   = "terminal is not running"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, renderers"
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if h.hub != nil {
		resp["renderers"] = h.hub.Subscribers()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Current session
// @Description  Mode, patient and derived view of the running terminal.
// @Tags         session
// @Produce      json
// @Success      200  {object}  service.Snapshot
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/session [get]
func (h *Handler) getSession(c *gin.Context) {
	if h.services.Terminal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoTerminal})
		return
	}
	c.JSON(http.StatusOK, h.services.Terminal.Snapshot())
}

// @Summary      List medication schedules
// @Description  Read from the schedule store, not the terminal's cache.
// @Tags         schedules
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, schedules"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedules [get]
func (h *Handler) getSchedules(c *gin.Context) {
	list, err := h.services.ScheduleBook.ListSchedules(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSchedules, "schedules_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(list),
		"schedules": list,
	})
}
