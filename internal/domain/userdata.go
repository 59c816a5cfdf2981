// Package domain defines the per-user recipe aggregate and its parts:
// recipes, active preparations, completion records, and usage statistics.
// The aggregate is persisted as a single JSON attribute blob per user
// (see internal/repo), so these types carry JSON tags rather than an
// ORM mapping.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Recipe status values. Status is derived state: it is synchronized from the
// active preparation list on every read and never trusted long-term.
const (
	StatusAvailable = "available"
	StatusPreparing = "preparing"
)

// Preparation status values.
const (
	PrepStatusActive    = "active"
	PrepStatusCompleted = "completed"
)

// DefaultPerson is recorded on a preparation when no person was named.
const DefaultPerson = "a friend"

// Normalized defaults applied to optional recipe fields the user did not know.
const (
	UnknownIngredients = "Unknown"
	UncategorizedType  = "Uncategorized"
)

// Recipe is a named dish entry with ingredient/type metadata and a derived
// availability status. Names are unique per user (case-insensitive).
type Recipe struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Ingredients       string    `json:"ingredients"`
	Type              string    `json:"type"`
	AddedAt           time.Time `json:"added_at"`
	TotalPreparations int       `json:"total_preparations"`
	Status            string    `json:"status"`
}

// Preparation is an active instance of someone cooking a specific recipe.
// At most one active preparation may exist per recipe id.
type Preparation struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	Name      string    `json:"name"`
	Person    string    `json:"person"`
	StartedAt time.Time `json:"started_at"`
	DueAt     time.Time `json:"due_at"`
	Status    string    `json:"status"`
}

// Completion is an immutable historical record of a finished preparation.
// It is a Preparation copy augmented with completion metadata and appended
// to the append-only history list.
type Completion struct {
	Preparation
	CompletedAt     time.Time `json:"completed_at"`
	CompletedOnTime bool      `json:"completed_on_time"`
}

// Stats aggregates lifetime counters for a user.
type Stats struct {
	TotalRecipes      int `json:"total_recipes"`
	TotalPreparations int `json:"total_preparations"`
	TotalCompletions  int `json:"total_completions"`
}

// UserData is the aggregate root owned by exactly one user id. It is created
// with zeroed defaults on first access and lives forever; individual fields
// are mutated through the lifecycle services.
type UserData struct {
	Recipes            []Recipe      `json:"recipes"`
	ActivePreparations []Preparation `json:"active_preparations"`
	CompletionHistory  []Completion  `json:"completion_history"`
	Stats              Stats         `json:"stats"`
	FrequentUser       bool          `json:"frequent_user"`
}

// NewUserData returns a freshly initialized aggregate with empty lists and
// zeroed counters, the shape persisted on a user's first contact.
func NewUserData() *UserData {
	return &UserData{
		Recipes:            []Recipe{},
		ActivePreparations: []Preparation{},
		CompletionHistory:  []Completion{},
	}
}

// NewRecipeID generates a short unique recipe identifier.
func NewRecipeID() string {
	return uuid.NewString()[:8]
}

// NewPreparationID generates a preparation identifier that embeds the start
// date, e.g. "PREP-20250131-1a2b3c4d".
func NewPreparationID(now time.Time) string {
	return "PREP-" + now.Format("20060102") + "-" + uuid.NewString()[:8]
}

// PreparationFor returns the active preparation referencing recipeID, or nil.
func (u *UserData) PreparationFor(recipeID string) *Preparation {
	for i := range u.ActivePreparations {
		if u.ActivePreparations[i].RecipeID == recipeID {
			return &u.ActivePreparations[i]
		}
	}
	return nil
}

// SyncStatuses recomputes every recipe's status from the active preparation
// list: preparing iff the recipe id appears as a RecipeID there. Recipes that
// predate id assignment get one lazily.
func (u *UserData) SyncStatuses() {
	preparing := make(map[string]struct{}, len(u.ActivePreparations))
	for _, p := range u.ActivePreparations {
		if p.RecipeID != "" {
			preparing[p.RecipeID] = struct{}{}
		}
	}
	for i := range u.Recipes {
		if u.Recipes[i].ID == "" {
			u.Recipes[i].ID = NewRecipeID()
		}
		if _, ok := preparing[u.Recipes[i].ID]; ok {
			u.Recipes[i].Status = StatusPreparing
		} else {
			u.Recipes[i].Status = StatusAvailable
		}
	}
}
