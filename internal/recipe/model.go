package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors returned by recipe sources and scaling helpers.
var (
	ErrNotFound        = errors.New("recipe not found")
	ErrInvalidScale    = errors.New("invalid scale factor")
	ErrUnknownServings = errors.New("recipe does not declare servings")
	ErrNilRecipe       = errors.New("recipe is nil")
)

var validate = validator.New()

// Recipe is a published recipe as stored by the content site.
type Recipe struct {
	Slug         string       `json:"slug" db:"slug" validate:"required"`
	Title        string       `json:"title" db:"title" validate:"required"`
	Description  string       `json:"description" db:"description"`
	Category     string       `json:"category" db:"category"`
	Servings     int          `json:"servings" db:"servings" validate:"gte=0"`
	Ingredients  []Ingredient `json:"ingredients" validate:"dive"`
	Instructions []string     `json:"instructions"`
	Notes        string       `json:"notes,omitempty" db:"notes"`
}

// Ingredient is one line of a recipe's ingredient list. Amount is free text
// written by the recipe author, e.g. "1 1/2", "0.5" or "to taste".
type Ingredient struct {
	Name   string `json:"name" validate:"required"`
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // avoids infinite recursion
	if err := json.Unmarshal(data, (*Alias)(r)); err != nil {
		return err
	}

	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))

	return nil
}

// Validate checks the recipe's required fields.
func (r *Recipe) Validate() error {
	if r == nil {
		return ErrNilRecipe
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid recipe %q: %w", r.Slug, err)
	}
	return nil
}

// ValidateIngredients checks that every ingredient is named.
func ValidateIngredients(ingredients []Ingredient) error {
	for i := range ingredients {
		if err := validate.Struct(&ingredients[i]); err != nil {
			return fmt.Errorf("ingredient %d: %w", i, err)
		}
	}
	return nil
}

// ServingsFactor returns the scale factor that turns the recipe into one
// serving target people.
func (r *Recipe) ServingsFactor(target int) (float64, error) {
	if target <= 0 {
		return 0, fmt.Errorf("%w: servings must be positive, got %d", ErrInvalidScale, target)
	}
	if r.Servings <= 0 {
		return 0, ErrUnknownServings
	}
	return float64(target) / float64(r.Servings), nil
}

func (r *Recipe) clone() *Recipe {
	c := *r
	if r.Ingredients != nil {
		c.Ingredients = make([]Ingredient, len(r.Ingredients))
		copy(c.Ingredients, r.Ingredients)
	}
	if r.Instructions != nil {
		c.Instructions = make([]string, len(r.Instructions))
		copy(c.Instructions, r.Instructions)
	}
	return &c
}
