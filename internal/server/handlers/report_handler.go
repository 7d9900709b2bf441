package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/service/export"
	"github.com/quociou/pibao/internal/service/reporting"
)

const defaultTrendDays = 30

// ReportingService exposes trends and reminders.
type ReportingService interface {
	Trend(ctx context.Context, from, to string) (reporting.TrendReport, error)
	Reminders(ctx context.Context, today string) ([]reporting.ReminderStatus, error)
}

// ExportService runs backups on demand.
type ExportService interface {
	Run(ctx context.Context, from, to string) (export.Result, error)
}

// ReportHandler serves trends, reminders and on-demand export.
type ReportHandler struct {
	reporting ReportingService
	export    ExportService
	loc       *time.Location
	logger    *zap.Logger
}

// NewReportHandler constructs the handler. Dates default to today in loc.
func NewReportHandler(reporting ReportingService, exporter ExportService, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reporting: reporting, export: exporter, loc: loc, logger: logger}
}

// Trends GET /trends?from=&to=. Defaults to the last 30 days.
func (h *ReportHandler) Trends(c *gin.Context) {
	to := c.DefaultQuery("to", today(h.loc))
	end, err := models.ParseDate(to)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}
	from := c.DefaultQuery("from", models.DateKey(end.AddDate(0, 0, -(defaultTrendDays-1))))
	start, err := models.ParseDate(from)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}
	if start.After(end) {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, "from must not be after to")
		return
	}

	report, err := h.reporting.Trend(c.Request.Context(), models.DateKey(start), models.DateKey(end))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}

// Reminders GET /reminders?date=
func (h *ReportHandler) Reminders(c *gin.Context) {
	date := c.DefaultQuery("date", today(h.loc))
	day, err := models.ParseDate(date)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}
	statuses, err := h.reporting.Reminders(c.Request.Context(), models.DateKey(day))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"date": models.DateKey(day), "reminders": statuses})
}

// Export POST /export?from=&to=. Open bounds export everything.
func (h *ReportHandler) Export(c *gin.Context) {
	res, err := h.export.Run(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		failWith(c, err)
		return
	}
	h.logger.Info("manual export", zap.Int("rows", res.Rows))
	ok(c, http.StatusOK, res)
}
