// Package repository declares the storage port shared by the document-store
// and in-memory adapters.
package repository

import (
	"context"
	"errors"

	"github.com/quociou/pibao/internal/domain/models"
)

// ErrNotFound is returned when the requested food, record or settings document does not exist.
var ErrNotFound = errors.New("not found")

// Store persists the food catalog, the daily records and the settings singleton.
// Records are keyed by date; PutRecord replaces any record stored for the same date.
type Store interface {
	ListFoods(ctx context.Context) ([]models.FoodDefinition, error)
	GetFood(ctx context.Context, id string) (models.FoodDefinition, error)
	PutFood(ctx context.Context, food models.FoodDefinition) error
	DeleteFood(ctx context.Context, id string) error

	GetRecord(ctx context.Context, date string) (models.DailyRecord, error)
	// ListRecords returns records with from <= date <= to, oldest first.
	// An empty bound leaves that side open.
	ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error)
	PutRecord(ctx context.Context, record models.DailyRecord) error
	DeleteRecord(ctx context.Context, date string) error

	GetSettings(ctx context.Context) (models.AppSettings, error)
	PutSettings(ctx context.Context, settings models.AppSettings) error

	Close(ctx context.Context) error
}
