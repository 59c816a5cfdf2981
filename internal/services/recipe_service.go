// Package services – RecipeService
//
// This file implements the recipe half of the lifecycle: adding with
// input normalization and duplicate detection, searching with exact-first
// ranking, filtering with status synchronization, fixed-size pagination,
// and deletion guarded by the active preparation list.
//
// All mutating methods read the aggregate through the store, apply the
// change, and save it back; the store's write-through keeps the cache tiers
// current. Observability: the main operations are OpenTelemetry-instrumented.
package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// UserDataStore is the repository contract required by the lifecycle
// services. *repo.UserDataStore satisfies it.
type UserDataStore interface {
	// Get returns the aggregate for userID, creating defaults on first access.
	Get(ctx context.Context, userID string) (*domain.UserData, error)
	// Save persists the aggregate and writes through the cache tiers.
	Save(ctx context.Context, userID string, data *domain.UserData) error
}

// Filter keywords accepted by FilterRecipes for the type/status filter.
const (
	filterPreparing     = "preparing"
	filterInPreparation = "in preparation"
	filterAvailable     = "available"
)

// dontKnowPhrases are the utterances treated as "I don't know" when
// normalizing free-text fields.
var dontKnowPhrases = map[string]struct{}{
	"i don't know":  {},
	"i dont know":   {},
	"don't know":    {},
	"dont know":     {},
	"i do not know": {},
	"no idea":       {},
	"not sure":      {},
}

// RecipeService owns recipe CRUD, search, filtering, and pagination.
type RecipeService struct {
	Store UserDataStore

	// PageSize is the fixed page length for List pagination.
	PageSize int
	// Now is the clock; overridable in tests.
	Now func() time.Time

	caser cases.Caser
}

// NewRecipeService constructs a RecipeService with the given page size
// (values < 1 fall back to 10).
func NewRecipeService(store UserDataStore, pageSize int) *RecipeService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &RecipeService{
		Store:    store,
		PageSize: pageSize,
		Now:      time.Now,
		caser:    cases.Title(language.English),
	}
}

// NormalizeField cleans a free-text field value: trims, strips common spoken
// prefixes, substitutes def for any known "I don't know" phrase or empty
// input, and title-cases the result.
func (s *RecipeService) NormalizeField(value, def string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return def
	}
	if _, ok := dontKnowPhrases[v]; ok {
		return def
	}
	for _, prefix := range []string{"the ingredients are ", "the type is ", "the name is ", "it is ", "it's "} {
		if strings.HasPrefix(v, prefix) {
			v = strings.TrimSpace(v[len(prefix):])
			break
		}
	}
	if v == "" {
		return def
	}
	return s.caser.String(v)
}

// NormalizeName cleans a recipe name: trims and title-cases, with no
// default substitution (a missing name stays empty and keeps the
// slot-filling flow waiting).
func (s *RecipeService) NormalizeName(name string) string {
	v := strings.TrimSpace(name)
	if v == "" {
		return ""
	}
	return s.caser.String(strings.ToLower(v))
}

// Add creates a recipe for userID after normalizing the name and the
// optional fields. A case-insensitive exact name match yields
// ErrDuplicateRecipe and leaves the aggregate untouched.
func (s *RecipeService) Add(ctx context.Context, userID, name, ingredients, kind string) (*domain.Recipe, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	name = s.NormalizeName(name)

	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if findRecipeExact(data.Recipes, name) != nil {
		return nil, ErrDuplicateRecipe
	}

	recipe := domain.Recipe{
		ID:          domain.NewRecipeID(),
		Name:        name,
		Ingredients: s.NormalizeField(ingredients, domain.UnknownIngredients),
		Type:        s.NormalizeField(kind, domain.UncategorizedType),
		AddedAt:     s.Now().UTC(),
		Status:      domain.StatusAvailable,
	}
	data.Recipes = append(data.Recipes, recipe)
	data.Stats.TotalRecipes = len(data.Recipes)

	if err := s.Store.Save(ctx, userID, data); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Search returns recipes matching query: exact name matches ranked first,
// then case-insensitive substring matches in either direction. An empty
// query or no match yields an empty slice.
func (s *RecipeService) Search(ctx context.Context, userID, query string) ([]domain.Recipe, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rankByName(data.Recipes, query), nil
}

// List returns all recipes with their statuses synchronized against the
// active preparation list.
func (s *RecipeService) List(ctx context.Context, userID string) ([]domain.Recipe, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	data.SyncStatuses()
	return data.Recipes, nil
}

// FilterRecipes synchronizes statuses and applies at most one filter:
// an exact case-insensitive ingredient match takes precedence over the
// type/status keywords. It returns the filtered list plus a human-readable
// description suffix for spoken responses (e.g. " with chicken").
func (s *RecipeService) FilterRecipes(ctx context.Context, userID, typeFilter, ingredientFilter string) ([]domain.Recipe, string, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "FilterRecipes",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	data.SyncStatuses()

	recipes := data.Recipes
	switch {
	case strings.TrimSpace(ingredientFilter) != "":
		want := strings.ToLower(strings.TrimSpace(ingredientFilter))
		out := make([]domain.Recipe, 0, len(recipes))
		for _, r := range recipes {
			if strings.ToLower(r.Ingredients) == want {
				out = append(out, r)
			}
		}
		return out, " with " + strings.TrimSpace(ingredientFilter), nil

	case strings.TrimSpace(typeFilter) != "":
		switch strings.ToLower(strings.TrimSpace(typeFilter)) {
		case filterPreparing, filterInPreparation:
			out := make([]domain.Recipe, 0, len(recipes))
			for _, r := range recipes {
				if r.Status == domain.StatusPreparing {
					out = append(out, r)
				}
			}
			return out, " in preparation", nil
		case filterAvailable:
			out := make([]domain.Recipe, 0, len(recipes))
			for _, r := range recipes {
				if r.Status == domain.StatusAvailable {
					out = append(out, r)
				}
			}
			return out, " available", nil
		}
	}
	return recipes, "", nil
}

// Page is one fixed-size window over a filtered recipe list.
type Page struct {
	Items     []domain.Recipe
	Start     int // index of the first item, inclusive
	End       int // index past the last item
	Total     int
	HasMore   bool
	Remaining int // items after this page
}

// Paginate returns page number page (0-based) over recipes, covering items
// [page*PageSize, min(page*PageSize+PageSize, total)). The last page always
// reports Remaining == 0.
func (s *RecipeService) Paginate(recipes []domain.Recipe, page int) Page {
	if page < 0 {
		page = 0
	}
	total := len(recipes)
	start := page * s.PageSize
	if start > total {
		start = total
	}
	end := start + s.PageSize
	if end > total {
		end = total
	}
	return Page{
		Items:     recipes[start:end],
		Start:     start,
		End:       end,
		Total:     total,
		HasMore:   end < total,
		Remaining: total - end,
	}
}

// Delete removes the recipe with an exact name match. It refuses with
// ErrInPreparation while an active preparation references the recipe and
// returns the removed recipe on success.
func (s *RecipeService) Delete(ctx context.Context, userID, name string) (*domain.Recipe, error) {
	tr := otel.Tracer("services/RecipeService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := findRecipeExact(data.Recipes, name)
	if target == nil {
		return nil, ErrRecipeNotFound
	}
	if data.PreparationFor(target.ID) != nil {
		return nil, ErrInPreparation
	}

	removed := *target
	kept := make([]domain.Recipe, 0, len(data.Recipes)-1)
	for _, r := range data.Recipes {
		if r.ID != target.ID {
			kept = append(kept, r)
		}
	}
	data.Recipes = kept
	data.Stats.TotalRecipes = len(kept)

	if err := s.Store.Save(ctx, userID, data); err != nil {
		return nil, err
	}
	return &removed, nil
}

// AvailableInfo returns how many recipes are not being prepared, plus up to
// two example names for spoken suggestions.
func (s *RecipeService) AvailableInfo(ctx context.Context, userID string) (int, []string, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	data.SyncStatuses()

	count := 0
	examples := make([]string, 0, 2)
	for _, r := range data.Recipes {
		if r.Status != domain.StatusAvailable {
			continue
		}
		count++
		if len(examples) < 2 {
			examples = append(examples, r.Name)
		}
	}
	return count, examples, nil
}

// findRecipeExact returns the recipe whose name equals name
// case-insensitively, or nil. An empty name never matches.
func findRecipeExact(recipes []domain.Recipe, name string) *domain.Recipe {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	for i := range recipes {
		if strings.ToLower(recipes[i].Name) == want {
			return &recipes[i]
		}
	}
	return nil
}

// rankByName implements the search ranking: exact matches first, then
// substring containment in either direction, preserving insertion order
// within each class.
func rankByName(recipes []domain.Recipe, query string) []domain.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Recipe{}
	}
	exact := make([]domain.Recipe, 0, 1)
	partial := make([]domain.Recipe, 0, 4)
	for _, r := range recipes {
		name := strings.ToLower(r.Name)
		switch {
		case name == q:
			exact = append(exact, r)
		case strings.Contains(name, q) || strings.Contains(q, name):
			partial = append(partial, r)
		}
	}
	return append(exact, partial...)
}
