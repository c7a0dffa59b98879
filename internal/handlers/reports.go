package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storewatch/internal/service"
)

const (
	errTriggerReport = "failed to trigger report"
	errGetReport     = "failed to load report"
	errWriteReport   = "failed to write report"
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
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// @Summary      Trigger a report run
// @Description  Creates a PENDING run, enqueues background generation, and returns the run id immediately.
// @Tags         reports
// @Produce      json
// @Success      202  {object}  map[string]string  "report_id"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string  "queue saturated"
// @Router       /api/v1/reports/trigger [post]
// @Security     BearerAuth
func (h *Handler) triggerReport(c *gin.Context) {
	ctx := c.Request.Context()

	reportID, err := h.services.Prepare(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errTriggerReport, "report_trigger_failed", err)
		return
	}

	if err := h.services.Dispatcher.Enqueue(reportID); err != nil {
		// The run stays PENDING forever if it never reaches the queue;
		// surface that to the caller instead.
		if errors.Is(err, service.ErrQueueFull) {
			h.logAndJSONError(c, http.StatusServiceUnavailable, "report queue is full, retry later", "report_enqueue_rejected", err, "report_id", reportID)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errTriggerReport, "report_enqueue_failed", err, "report_id", reportID)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"report_id": reportID})
}

// @Summary      Fetch a report run
// @Description  Returns {"status":"running"} until the run completes, {"status":"failed"} if generation failed, or the CSV rows once READY.
// @Tags         reports
// @Produce      json
// @Produce      text/csv
// @Param        id  path  string  true  "Report run id"
// @Success      200  {string}  string  "CSV rows or status object"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/reports/{id} [get]
// @Security     BearerAuth
func (h *Handler) getReport(c *gin.Context) {
	ctx := c.Request.Context()
	reportID := c.Param("id")

	result, err := h.services.Result(ctx, reportID)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetReport, "report_get_failed", err, "report_id", reportID)
		return
	}

	if result.State != service.ResultReady {
		c.JSON(http.StatusOK, gin.H{"status": result.State})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.csv", reportID))
	if err := service.WriteReportCSV(c.Writer, result.Items); err != nil {
		// Headers are already out; log and abort the stream.
		if h.log != nil {
			h.log.Errorw("report_csv_write_failed", "report_id", reportID, "err", err)
		}
		c.Abort()
	}
}
