package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/stats"
)

// JournalService is the journal use-case surface exposed over HTTP.
type JournalService interface {
	Catalog(ctx context.Context) ([]models.FoodDefinition, error)
	SaveFood(ctx context.Context, food models.FoodDefinition) (models.FoodDefinition, error)
	UpdateFood(ctx context.Context, id string, food models.FoodDefinition) (models.FoodDefinition, error)
	DeleteFood(ctx context.Context, id string) error

	Records(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	Record(ctx context.Context, date string) (models.DailyRecord, error)
	DraftRecord(ctx context.Context, date string) (models.DailyRecord, error)
	SaveRecord(ctx context.Context, record models.DailyRecord) (models.DailyRecord, error)
	DeleteRecord(ctx context.Context, date string) error
	DailyStats(ctx context.Context, date string) (stats.DailyStats, models.DailyRecord, error)

	Settings(ctx context.Context) (models.AppSettings, error)
	SaveSettings(ctx context.Context, settings models.AppSettings) (models.AppSettings, error)
}

// JournalHandler serves foods, records and settings.
type JournalHandler struct {
	svc    JournalService
	logger *zap.Logger
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(svc JournalService, logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{svc: svc, logger: logger}
}

// ListFoods GET /foods
func (h *JournalHandler) ListFoods(c *gin.Context) {
	foods, err := h.svc.Catalog(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, foods)
}

// CreateFood POST /foods
func (h *JournalHandler) CreateFood(c *gin.Context) {
	var food models.FoodDefinition
	if err := c.ShouldBindJSON(&food); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid food payload")
		return
	}
	food.ID = ""
	saved, err := h.svc.SaveFood(c.Request.Context(), food)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusCreated, saved)
}

// UpdateFood PUT /foods/:id
func (h *JournalHandler) UpdateFood(c *gin.Context) {
	var food models.FoodDefinition
	if err := c.ShouldBindJSON(&food); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid food payload")
		return
	}
	saved, err := h.svc.UpdateFood(c.Request.Context(), c.Param("id"), food)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, saved)
}

// DeleteFood DELETE /foods/:id
func (h *JournalHandler) DeleteFood(c *gin.Context) {
	if err := h.svc.DeleteFood(c.Request.Context(), c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	noContent(c)
}

// ListRecords GET /records?from=&to=
func (h *JournalHandler) ListRecords(c *gin.Context) {
	records, err := h.svc.Records(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}

// GetRecord GET /records/:date
func (h *JournalHandler) GetRecord(c *gin.Context) {
	record, err := h.svc.Record(c.Request.Context(), c.Param("date"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, record)
}

// DraftRecord GET /records/:date/draft
func (h *JournalHandler) DraftRecord(c *gin.Context) {
	draft, err := h.svc.DraftRecord(c.Request.Context(), c.Param("date"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, draft)
}

// PutRecord PUT /records/:date. The path date wins over the body.
func (h *JournalHandler) PutRecord(c *gin.Context) {
	var record models.DailyRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid record payload")
		return
	}
	date := c.Param("date")
	if record.Date != "" && record.Date != date {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body date does not match path")
		return
	}
	record.Date = date
	record.BackedUpAt = nil

	saved, err := h.svc.SaveRecord(c.Request.Context(), record)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, saved)
}

// DeleteRecord DELETE /records/:date
func (h *JournalHandler) DeleteRecord(c *gin.Context) {
	if err := h.svc.DeleteRecord(c.Request.Context(), c.Param("date")); err != nil {
		failWith(c, err)
		return
	}
	noContent(c)
}

type statsResponse struct {
	Date      string           `json:"date"`
	Stats     stats.DailyStats `json:"stats"`
	SideRatio float64          `json:"side_ratio"`
}

// RecordStats GET /records/:date/stats
func (h *JournalHandler) RecordStats(c *gin.Context) {
	st, rec, err := h.svc.DailyStats(c.Request.Context(), c.Param("date"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, statsResponse{Date: rec.Date, Stats: st, SideRatio: st.SideRatio()})
}

// GetSettings GET /settings
func (h *JournalHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

// PutSettings PUT /settings
func (h *JournalHandler) PutSettings(c *gin.Context) {
	var settings models.AppSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid settings payload")
		return
	}
	saved, err := h.svc.SaveSettings(c.Request.Context(), settings)
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, http.StatusOK, saved)
}

func today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return models.DateKey(time.Now().In(loc))
}
