package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/repository"
)

func TestStore_RecordsByDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		if err := s.PutRecord(ctx, models.DailyRecord{ID: "id-" + date, Date: date}); err != nil {
			t.Fatalf("PutRecord: %v", err)
		}
	}
	// same date replaces
	if err := s.PutRecord(ctx, models.DailyRecord{ID: "id-2024-01-02", Date: "2024-01-02", Weight: 4.1}); err != nil {
		t.Fatalf("PutRecord: %v", err)
	}

	all, err := s.ListRecords(ctx, "", "")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(all) != 3 || all[0].Date != "2024-01-01" || all[2].Date != "2024-01-03" {
		t.Fatalf("ListRecords order/len wrong: %+v", all)
	}
	if all[1].Weight != 4.1 {
		t.Fatalf("replaced record weight = %v, want 4.1", all[1].Weight)
	}

	ranged, _ := s.ListRecords(ctx, "2024-01-02", "2024-01-02")
	if len(ranged) != 1 {
		t.Fatalf("ranged len = %d, want 1", len(ranged))
	}

	if err := s.DeleteRecord(ctx, "2024-01-01"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, err := s.GetRecord(ctx, "2024-01-01"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetRecord after delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteRecord(ctx, "2024-01-01"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()
	left := 10.0
	rec := models.DailyRecord{
		Date:         "2024-01-01",
		WaterIntakes: []models.WaterIntakeEntry{{ID: "b", Kind: models.WaterBowl, Original: 100, Leftover: &left}},
	}
	if err := s.PutRecord(ctx, rec); err != nil {
		t.Fatalf("PutRecord: %v", err)
	}

	left = 99
	rec.WaterIntakes[0].Original = 1

	got, err := s.GetRecord(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.WaterIntakes[0].Original != 100 || *got.WaterIntakes[0].Leftover != 10 {
		t.Fatalf("stored record was mutated through caller references: %+v", got.WaterIntakes[0])
	}
}

func TestStore_FoodsAndSettings(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetSettings(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetSettings on empty store err = %v", err)
	}
	if err := s.PutSettings(ctx, models.DefaultSettings()); err != nil {
		t.Fatalf("PutSettings: %v", err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil || got.TargetWeight != 4.5 {
		t.Fatalf("GetSettings = %+v, %v", got, err)
	}

	if err := s.PutFood(ctx, models.FoodDefinition{ID: "b", Name: "B"}); err != nil {
		t.Fatalf("PutFood: %v", err)
	}
	if err := s.PutFood(ctx, models.FoodDefinition{ID: "a", Name: "A"}); err != nil {
		t.Fatalf("PutFood: %v", err)
	}
	foods, _ := s.ListFoods(ctx)
	if len(foods) != 2 || foods[0].ID != "a" {
		t.Fatalf("ListFoods = %+v", foods)
	}
	if err := s.DeleteFood(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("DeleteFood missing err = %v", err)
	}
}
