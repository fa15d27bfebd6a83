package recipe

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryStore holds baseline recipes in memory. Safe for concurrent use.
// Recipes are copied on the way in and out, so a caller scaling or editing
// a returned recipe never changes the baseline.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
	log     logrus.FieldLogger
}

// NewMemoryStore creates a store preloaded with the built-in recipes.
func NewMemoryStore(log logrus.FieldLogger) *MemoryStore {
	s := &MemoryStore{
		recipes: make(map[string]*Recipe),
		log:     log,
	}
	s.seed()
	return s
}

// Add validates r and stores a copy of it, replacing any recipe with the same slug.
func (s *MemoryStore) Add(r *Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[r.Slug] = r.clone()
	s.log.WithField("slug", r.Slug).Debug("recipe added")
	return nil
}

// GetRecipeBySlug returns a copy of the recipe with the given slug.
func (s *MemoryStore) GetRecipeBySlug(ctx context.Context, slug string) (*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[slug]
	if !ok {
		s.log.WithField("slug", slug).Debug("recipe not found")
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

// ListRecipes returns copies of all recipes ordered by title. A non-empty
// category limits the result to that category.
func (s *MemoryStore) ListRecipes(ctx context.Context, category string) ([]*Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) seed() {
	builtin := []*Recipe{
		{
			Slug:        "vegan-banana-bread",
			Title:       "Vegan Banana Bread",
			Description: "Moist loaf sweetened with very ripe bananas.",
			Category:    "baking",
			Servings:    8,
			Ingredients: []Ingredient{
				{Name: "ripe bananas", Amount: "3", Notes: "mashed"},
				{Name: "plant milk", Amount: "1/3", Unit: "cup"},
				{Name: "coconut oil", Amount: "1/4", Unit: "cup", Notes: "melted"},
				{Name: "brown sugar", Amount: "1/2", Unit: "cup"},
				{Name: "all-purpose flour", Amount: "1 3/4", Unit: "cups"},
				{Name: "baking soda", Amount: "1", Unit: "teaspoon"},
				{Name: "salt", Amount: "a pinch"},
			},
			Instructions: []string{
				"Heat the oven to 350F and line a loaf pan.",
				"Whisk bananas, milk, oil and sugar.",
				"Fold in flour, baking soda and salt.",
				"Bake 55 to 60 minutes.",
			},
		},
		{
			Slug:        "chickpea-curry",
			Title:       "Weeknight Chickpea Curry",
			Description: "Creamy coconut curry ready in thirty minutes.",
			Category:    "dinner",
			Servings:    4,
			Ingredients: []Ingredient{
				{Name: "coconut oil", Amount: "1", Unit: "tablespoon"},
				{Name: "onion", Amount: "1", Notes: "diced"},
				{Name: "garlic", Amount: "3", Unit: "cloves", Notes: "minced"},
				{Name: "curry powder", Amount: "1 1/2", Unit: "tablespoons"},
				{Name: "chickpeas", Amount: "2", Unit: "cans", Notes: "drained"},
				{Name: "coconut milk", Amount: "1", Unit: "can"},
				{Name: "lime juice", Amount: "0.5", Unit: "tablespoon"},
				{Name: "salt", Amount: "to taste"},
			},
			Instructions: []string{
				"Soften the onion in the oil.",
				"Add garlic and curry powder and cook one minute.",
				"Add chickpeas and coconut milk and simmer 15 minutes.",
				"Finish with lime juice and salt.",
			},
		},
		{
			Slug:        "overnight-oats",
			Title:       "Peanut Butter Overnight Oats",
			Description: "No-cook breakfast prepared the night before.",
			Category:    "breakfast",
			Servings:    1,
			Ingredients: []Ingredient{
				{Name: "rolled oats", Amount: "1/2", Unit: "cup"},
				{Name: "oat milk", Amount: "2/3", Unit: "cup"},
				{Name: "chia seeds", Amount: "1", Unit: "tablespoon"},
				{Name: "peanut butter", Amount: "2", Unit: "tablespoons"},
				{Name: "maple syrup", Amount: "", Notes: "optional"},
			},
			Instructions: []string{
				"Stir everything together in a jar.",
				"Refrigerate overnight.",
			},
		},
	}

	for _, r := range builtin {
		if err := s.Add(r); err != nil {
			s.log.WithError(err).Warn("skipping built-in recipe")
		}
	}
	s.log.WithField("count", len(s.recipes)).Debug("built-in recipes loaded")
}
