package admin

import (
	"time"

	"github.com/dropforge/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunScheduler triggers one scheduler pass for the current hour. Re-running
// the same hour creates nothing new.
func (h *Handler) RunScheduler(c *gin.Context) {
	results, err := h.SchedulerService.RunDueOccurrences(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, response.CodeInternal, "scheduler run failed", err)
		return
	}
	response.Success(c, gin.H{
		"occurrences_created": len(results),
		"occurrences":         results,
	})
}
