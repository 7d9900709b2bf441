package models

import (
	"fmt"
	"strings"
)

// FoodCategory classifies catalog entries.
type FoodCategory string

const (
	CategoryKibble FoodCategory = "kibble"
	CategoryCanned FoodCategory = "canned"
	CategorySnack  FoodCategory = "snack"
)

// legacyCategories maps retired or alternate spellings onto the canonical set.
var legacyCategories = map[string]FoodCategory{
	"kibble":    CategoryKibble,
	"dry":       CategoryKibble,
	"canned":    CategoryCanned,
	"wet":       CategoryCanned,
	"snack":     CategorySnack,
	"treat":     CategorySnack,
	"side":      CategorySnack,
	"side dish": CategorySnack,
	"side_dish": CategorySnack,
	"sidedish":  CategorySnack,
}

// NormalizeCategory maps a raw category value to its canonical form. Unknown
// values are returned lower-cased and trimmed so validation can reject them.
func NormalizeCategory(raw string) FoodCategory {
	key := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := legacyCategories[key]; ok {
		return c
	}
	return FoodCategory(key)
}

// Valid reports whether c is one of the canonical categories.
func (c FoodCategory) Valid() bool {
	switch c {
	case CategoryKibble, CategoryCanned, CategorySnack:
		return true
	}
	return false
}

// IsSnack reports whether calories from this category count as side calories.
func (c FoodCategory) IsSnack() bool {
	return NormalizeCategory(string(c)) == CategorySnack
}

// UnmarshalText normalizes legacy values while decoding JSON payloads.
func (c *FoodCategory) UnmarshalText(text []byte) error {
	*c = NormalizeCategory(string(text))
	return nil
}

// FoodDefinition is one entry of the food catalog.
type FoodDefinition struct {
	ID              string       `bson:"_id" json:"id"`
	Name            string       `bson:"name" json:"name"`
	Category        FoodCategory `bson:"category" json:"category"`
	CaloriesPerGram float64      `bson:"calories_per_gram" json:"calories_per_gram"`
	WaterPercent    float64      `bson:"water_percent" json:"water_percent"`
	Order           *int         `bson:"order,omitempty" json:"order,omitempty"`
	IsDefault       bool         `bson:"is_default,omitempty" json:"is_default,omitempty"`
	DefaultAmount   *float64     `bson:"default_amount,omitempty" json:"default_amount,omitempty"`
}

// Normalize canonicalizes fields that may hold legacy values.
func (f *FoodDefinition) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = NormalizeCategory(string(f.Category))
}

// Validate checks the definition before it is written to the catalog.
func (f FoodDefinition) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("name must not be empty")
	case !f.Category.Valid():
		return fmt.Errorf("unknown category %q", f.Category)
	case f.CaloriesPerGram < 0:
		return fmt.Errorf("calories_per_gram must be >= 0")
	case f.WaterPercent < 0 || f.WaterPercent > 100:
		return fmt.Errorf("water_percent must be between 0 and 100")
	case f.DefaultAmount != nil && *f.DefaultAmount <= 0:
		return fmt.Errorf("default_amount must be > 0")
	}
	return nil
}

// Catalog indexes food definitions by id.
type Catalog map[string]FoodDefinition

// NewCatalog builds a Catalog from a list of definitions.
func NewCatalog(foods []FoodDefinition) Catalog {
	catalog := make(Catalog, len(foods))
	for _, f := range foods {
		catalog[f.ID] = f
	}
	return catalog
}

// Lookup resolves a food by id first, then by case-insensitive name.
func (c Catalog) Lookup(ref string) (FoodDefinition, bool) {
	if f, ok := c[ref]; ok {
		return f, true
	}
	for _, f := range c {
		if strings.EqualFold(f.Name, ref) {
			return f, true
		}
	}
	return FoodDefinition{}, false
}
