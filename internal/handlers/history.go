package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bedside_terminal/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List administration history
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and medication. A date-only 'to' covers that whole day.
// @Tags         history
// @Produce      json
// @Param        from        query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to          query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        medication  query   string  false  "Medication name"  example(Aspirin)
// @Success      200  {object}  map[string]interface{}  "count, history"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from       time.Time
		to         time.Time
		medication = strings.TrimSpace(c.Query("medication"))
		err        error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	records, err := h.services.HistoryLog.ListHistory(ctx, service.HistoryFilter{
		From:       from,
		To:         to,
		Medication: medication,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load history", "history_list_failed", err,
			"from", from, "to", to, "medication", medication)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"history": records,
	})
}

// @Summary      Clear administration history
// @Description  The running terminal keeps its cached copy until it is restarted.
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [delete]
func (h *Handler) clearHistory(c *gin.Context) {
	if err := h.services.HistoryLog.ClearHistory(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to clear history", "history_clear_failed", err)
		return
	}
	if h.log != nil {
		h.log.Warnw("history_cleared", "remote", c.ClientIP())
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
