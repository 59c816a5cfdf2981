// Package services – PreparationService
//
// This file implements the preparation half of the lifecycle: starting a
// preparation (one active per recipe, default due window), completing one
// (id lookup preferred over name, on-time stamping, append-only history),
// and the read-only info helpers the dialogue responses lean on.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// PreparationService owns the start/complete transitions of preparations.
type PreparationService struct {
	Store UserDataStore

	// PrepDays is the default due window applied to new preparations.
	PrepDays int
	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewPreparationService constructs a PreparationService with the given due
// window in days (values < 1 fall back to 7).
func NewPreparationService(store UserDataStore, prepDays int) *PreparationService {
	if prepDays < 1 {
		prepDays = 7
	}
	return &PreparationService{Store: store, PrepDays: prepDays, Now: time.Now}
}

// Start begins preparing the recipe with an exact name match, recorded
// against person (or the default when empty). It enforces the one active
// preparation per recipe invariant and bumps both preparation counters.
func (s *PreparationService) Start(ctx context.Context, userID, recipeName, person string) (*domain.Preparation, error) {
	tr := otel.Tracer("services/PreparationService")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	recipe := findRecipeExact(data.Recipes, recipeName)
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}
	if recipe.ID == "" {
		recipe.ID = domain.NewRecipeID()
	}
	if data.PreparationFor(recipe.ID) != nil {
		return nil, ErrAlreadyPreparing
	}

	person = strings.TrimSpace(person)
	if person == "" {
		person = domain.DefaultPerson
	}

	now := s.Now().UTC()
	prep := domain.Preparation{
		ID:        domain.NewPreparationID(now),
		RecipeID:  recipe.ID,
		Name:      recipe.Name,
		Person:    person,
		StartedAt: now,
		DueAt:     now.AddDate(0, 0, s.PrepDays),
		Status:    domain.PrepStatusActive,
	}
	data.ActivePreparations = append(data.ActivePreparations, prep)

	recipe.Status = domain.StatusPreparing
	recipe.TotalPreparations++
	data.Stats.TotalPreparations++

	if err := s.Store.Save(ctx, userID, data); err != nil {
		return nil, err
	}
	return &prep, nil
}

// Complete finishes an active preparation, located by preparation id first
// and by case-insensitive substring of the recipe name second. Exactly one
// entry moves from the active list to history; the owning recipe returns to
// available and the completion counter is bumped.
func (s *PreparationService) Complete(ctx context.Context, userID, name, prepID string) (*domain.Completion, error) {
	tr := otel.Tracer("services/PreparationService")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(data.ActivePreparations) == 0 {
		return nil, ErrNoActivePreparations
	}

	idx := findActivePreparation(data.ActivePreparations, name, prepID)
	if idx < 0 {
		return nil, ErrPreparationNotFound
	}

	now := s.Now().UTC()
	prep := data.ActivePreparations[idx]
	data.ActivePreparations = append(data.ActivePreparations[:idx], data.ActivePreparations[idx+1:]...)

	completion := domain.Completion{
		Preparation:     prep,
		CompletedAt:     now,
		CompletedOnTime: !now.After(prep.DueAt),
	}
	completion.Status = domain.PrepStatusCompleted
	data.CompletionHistory = append(data.CompletionHistory, completion)

	for i := range data.Recipes {
		if data.Recipes[i].ID == prep.RecipeID {
			data.Recipes[i].Status = domain.StatusAvailable
			break
		}
	}
	data.Stats.TotalCompletions++

	if err := s.Store.Save(ctx, userID, data); err != nil {
		return nil, err
	}
	return &completion, nil
}

// ActiveInfo returns the number of active preparations plus up to three
// spoken example lines ("'Pasta' by Ana").
func (s *PreparationService) ActiveInfo(ctx context.Context, userID string) (int, []string, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	examples := make([]string, 0, 3)
	for _, p := range data.ActivePreparations {
		if len(examples) == 3 {
			break
		}
		examples = append(examples, fmt.Sprintf("'%s' by %s", p.Name, p.Person))
	}
	return len(data.ActivePreparations), examples, nil
}

// findActivePreparation locates an active preparation by id (preferred)
// or by substring-in-name, returning its index or -1.
func findActivePreparation(preps []domain.Preparation, name, prepID string) int {
	if prepID = strings.TrimSpace(prepID); prepID != "" {
		for i, p := range preps {
			if p.ID == prepID {
				return i
			}
		}
	}
	if want := strings.ToLower(strings.TrimSpace(name)); want != "" {
		for i, p := range preps {
			if strings.Contains(strings.ToLower(p.Name), want) {
				return i
			}
		}
	}
	return -1
}
