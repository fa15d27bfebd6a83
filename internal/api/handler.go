package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/playferkeeps/vegancookingrecipes-sub000/internal/recipe"
)

// DefaultTimeout bounds each store call made while serving a request.
const DefaultTimeout = 5 * time.Second

// RecipeStore defines the interface for reading baseline recipes.
type RecipeStore interface {
	GetRecipeBySlug(ctx context.Context, slug string) (*recipe.Recipe, error)
	ListRecipes(ctx context.Context, category string) ([]*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	RecipeStore RecipeStore
	Scaler      *recipe.Scaler
	// MaxScale is the largest accepted scale factor; zero means no limit.
	MaxScale float64
	Timeout  time.Duration

	log logrus.FieldLogger
}

// NewHandler creates a new Handler.
func NewHandler(recipeStore RecipeStore, scaler *recipe.Scaler, log logrus.FieldLogger) *Handler {
	if scaler == nil {
		scaler = recipe.NewScaler()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		RecipeStore: recipeStore,
		Scaler:      scaler,
		Timeout:     DefaultTimeout,
		log:         log,
	}
}

// ScaledRecipe is the response body for a single recipe.
type ScaledRecipe struct {
	Scale  float64        `json:"scale"`
	Recipe *recipe.Recipe `json:"recipe"`
}

// ScaleRequest is the request body for POST /scale.
type ScaleRequest struct {
	Ingredients []recipe.Ingredient `json:"ingredients" binding:"required"`
	Scale       float64             `json:"scale" binding:"required,gt=0"`
}

// ScaleResponse is the response body for POST /scale.
type ScaleResponse struct {
	Scale       float64             `json:"scale"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
}

// Health reports that the service is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetRecipes handles requests to list recipes, optionally by category.
func (h *Handler) GetRecipes(c *gin.Context) {
	category := c.Query("category")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.RecipeStore.ListRecipes(ctx, category)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// GetRecipe handles requests to retrieve a single recipe by slug. The
// optional scale or servings query parameter scales the ingredient list,
// always starting from the stored amounts.
func (h *Handler) GetRecipe(c *gin.Context) {
	slug := c.Param("slug")
	scaleParam := c.Query("scale")
	servingsParam := c.Query("servings")

	if scaleParam != "" && servingsParam != "" {
		c.String(http.StatusBadRequest, "Use either scale or servings, not both")
		return
	}

	factor := 1.0
	if scaleParam != "" {
		f, err := recipe.ParseScaleFactor(scaleParam)
		if err == nil {
			err = h.checkScale(f)
		}
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		factor = f
	}

	servings := 0
	if servingsParam != "" {
		n, err := strconv.Atoi(servingsParam)
		if err != nil || n <= 0 {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid servings: %q", servingsParam))
			return
		}
		servings = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	baseline, err := h.RecipeStore.GetRecipeBySlug(ctx, slug)
	if err != nil {
		h.storeError(c, err)
		return
	}

	if servings > 0 {
		factor, err = baseline.ServingsFactor(servings)
		if err == nil {
			err = h.checkScale(factor)
		}
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
	}

	scaled := h.Scaler.ScaleRecipe(baseline, factor)
	if n := h.Scaler.Unscalable(baseline.Ingredients); n > 0 {
		h.logger(c).WithFields(logrus.Fields{
			"slug":       slug,
			"unscalable": n,
		}).Debug("some amounts kept as written")
	}

	c.JSON(http.StatusOK, ScaledRecipe{Scale: factor, Recipe: scaled})
}

// Scale handles requests to scale an arbitrary ingredient list.
func (h *Handler) Scale(c *gin.Context) {
	var req ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if err := recipe.ValidateIngredients(req.Ingredients); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if err := h.checkScale(req.Scale); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, ScaleResponse{
		Scale:       req.Scale,
		Ingredients: h.Scaler.ScaleIngredients(req.Ingredients, req.Scale),
	})
}

func (h *Handler) checkScale(factor float64) error {
	if h.MaxScale > 0 && factor > h.MaxScale {
		return fmt.Errorf("%w: %g exceeds the maximum of %g", recipe.ErrInvalidScale, factor, h.MaxScale)
	}
	return nil
}

func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		c.String(http.StatusNotFound, "Recipe not found")
	case errors.Is(err, context.DeadlineExceeded):
		c.String(http.StatusRequestTimeout, fmt.Sprintf("Database query timed out after %s", h.Timeout))
	default:
		h.logger(c).WithError(err).Error("recipe store failed")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
	}
}
