// Recipe HTTP handlers.
//
// REST endpoints for the recipe side of the lifecycle:
//   - GET    /recipes           (list, filtered + paginated)
//   - POST   /recipes           (add)
//   - DELETE /recipes/:name     (delete, refused while preparing)
//   - GET    /recipes/search    (ranked search)
//
// Handlers are transport-thin: they validate input, call the lifecycle
// services, and map the business error values onto the envelope codes.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recipedeck/go-recipe-backend/internal/dialogue"
	"github.com/recipedeck/go-recipe-backend/internal/domain"
	"github.com/recipedeck/go-recipe-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// RecipeAPI is the recipe half of the lifecycle consumed by the handlers.
type RecipeAPI interface {
	Add(ctx context.Context, userID, name, ingredients, kind string) (*domain.Recipe, error)
	Search(ctx context.Context, userID, query string) ([]domain.Recipe, error)
	FilterRecipes(ctx context.Context, userID, typeFilter, ingredientFilter string) ([]domain.Recipe, string, error)
	Paginate(recipes []domain.Recipe, page int) services.Page
	Delete(ctx context.Context, userID, name string) (*domain.Recipe, error)
}

// PreparationAPI is the preparation half of the lifecycle.
type PreparationAPI interface {
	Start(ctx context.Context, userID, recipeName, person string) (*domain.Preparation, error)
	Complete(ctx context.Context, userID, name, prepID string) (*domain.Completion, error)
}

// SummaryAPI provides the read-only aggregations.
type SummaryAPI interface {
	Active(ctx context.Context, userID string) (*services.ActiveSummary, error)
	History(ctx context.Context, userID string) (*services.HistorySummary, error)
}

// DialogueAPI processes conversational turns.
type DialogueAPI interface {
	HandleTurn(ctx context.Context, turn dialogue.Turn) dialogue.Response
}

// UserDataAPI exposes per-user aggregate administration.
type UserDataAPI interface {
	Get(ctx context.Context, userID string) (*domain.UserData, error)
	Purge(ctx context.Context, userID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints over the injected service contracts.
type Handlers struct {
	recipes   RecipeAPI
	preps     PreparationAPI
	summaries SummaryAPI
	tracker   DialogueAPI
	users     UserDataAPI
}

// New constructs a Handlers instance bound to the given services.
func New(recipes RecipeAPI, preps PreparationAPI, summaries SummaryAPI, tracker DialogueAPI, users UserDataAPI) *Handlers {
	return &Handlers{recipes: recipes, preps: preps, summaries: summaries, tracker: tracker, users: users}
}

// userID extracts the caller's user id from the Gin context (set by upstream
// middleware), falling back to the X-User-ID header and finally a demo id.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// AddRecipeRequest is the JSON payload for creating a recipe. Ingredients and
// type are optional; unknown values are normalized to the documented defaults.
type AddRecipeRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Ingredients string `json:"ingredients"`
	Type        string `json:"type"`
}

// Pagination carries page metadata for list responses.
type Pagination struct {
	Page      int  `json:"page"`
	PageSize  int  `json:"page_size"`
	Total     int  `json:"total"`
	HasMore   bool `json:"has_more"`
	Remaining int  `json:"remaining"`
}

// ListRecipesResponse wraps a page of recipes, the applied filter
// description, and pagination information.
type ListRecipesResponse struct {
	Recipes    []domain.Recipe `json:"recipes"`
	Filter     string          `json:"filter,omitempty"`
	Pagination Pagination      `json:"pagination"`
}

//
// Handlers
//

// ListRecipes returns a page of the user's recipes with statuses
// synchronized. Query params: filter (type/status keyword), ingredient
// (exact match, takes precedence), page (0-based).
func (h *Handlers) ListRecipes(c *gin.Context) {
	pageN := 0
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "page must be a non-negative integer")
			return
		}
		pageN = n
	}

	filtered, desc, err := h.recipes.FilterRecipes(c.Request.Context(), userID(c), c.Query("filter"), c.Query("ingredient"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	page := h.recipes.Paginate(filtered, pageN)
	ok(c, http.StatusOK, ListRecipesResponse{
		Recipes: page.Items,
		Filter:  strings.TrimSpace(desc),
		Pagination: Pagination{
			Page:      pageN,
			PageSize:  page.End - page.Start,
			Total:     page.Total,
			HasMore:   page.HasMore,
			Remaining: page.Remaining,
		},
	})
}

// AddRecipe creates a recipe. A case-insensitive name collision answers 409
// with the "duplicate" code and leaves the recipe list unchanged.
func (h *Handlers) AddRecipe(c *gin.Context) {
	var req AddRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1-255 chars)")
		return
	}

	recipe, err := h.recipes.Add(c.Request.Context(), userID(c), req.Name, req.Ingredients, req.Type)
	if errors.Is(err, services.ErrDuplicateRecipe) {
		fail(c, http.StatusConflict, ErrCodeDuplicate, "recipe already exists")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, recipe)
}

// SearchRecipes returns recipes matching the q parameter, exact matches first.
func (h *Handlers) SearchRecipes(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "q parameter required")
		return
	}

	found, err := h.recipes.Search(c.Request.Context(), userID(c), query)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"recipes": found, "total": len(found)})
}

// DeleteRecipe removes the named recipe. Active preparations block deletion
// with the "in_preparation" code.
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipe name required")
		return
	}

	_, err := h.recipes.Delete(c.Request.Context(), userID(c), name)
	switch {
	case errors.Is(err, services.ErrRecipeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
	case errors.Is(err, services.ErrInPreparation):
		fail(c, http.StatusConflict, ErrCodeInPreparation, "recipe is in preparation")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		noContent(c)
	}
}

// PurgeUserData permanently deletes the caller's stored aggregate and drops
// the cached snapshots. The next access re-initializes zeroed defaults.
func (h *Handlers) PurgeUserData(c *gin.Context) {
	if err := h.users.Purge(c.Request.Context(), userID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
