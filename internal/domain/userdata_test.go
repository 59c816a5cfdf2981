package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewUserData_InitializedEmpty(t *testing.T) {
	d := NewUserData()
	if d.Recipes == nil || d.ActivePreparations == nil || d.CompletionHistory == nil {
		t.Fatalf("slices must be initialized, not nil: %+v", d)
	}
	if d.Stats != (Stats{}) || d.FrequentUser {
		t.Fatalf("counters must start zeroed: %+v", d)
	}
}

func TestNewRecipeID_ShortAndUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewRecipeID()
		if len(id) != 8 {
			t.Fatalf("id %q, want 8 chars", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewPreparationID_EmbedsDate(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	id := NewPreparationID(now)
	if !strings.HasPrefix(id, "PREP-20250131-") {
		t.Fatalf("id = %q", id)
	}
	if len(id) != len("PREP-20250131-")+8 {
		t.Fatalf("id length = %d", len(id))
	}
}

func TestPreparationFor(t *testing.T) {
	d := NewUserData()
	d.ActivePreparations = append(d.ActivePreparations,
		Preparation{ID: "p1", RecipeID: "r1"},
		Preparation{ID: "p2", RecipeID: "r2"},
	)

	if p := d.PreparationFor("r2"); p == nil || p.ID != "p2" {
		t.Fatalf("PreparationFor(r2) = %+v", p)
	}
	if p := d.PreparationFor("r9"); p != nil {
		t.Fatalf("expected nil for unknown recipe, got %+v", p)
	}
}

func TestSyncStatuses(t *testing.T) {
	d := NewUserData()
	d.Recipes = append(d.Recipes,
		Recipe{ID: "r1", Name: "Pasta", Status: StatusAvailable},
		Recipe{ID: "r2", Name: "Salad", Status: StatusPreparing}, // stale
		Recipe{Name: "Legacy"},                                   // pre-id row
	)
	d.ActivePreparations = append(d.ActivePreparations, Preparation{RecipeID: "r1"})

	d.SyncStatuses()

	if d.Recipes[0].Status != StatusPreparing {
		t.Errorf("r1 status = %q, want preparing", d.Recipes[0].Status)
	}
	if d.Recipes[1].Status != StatusAvailable {
		t.Errorf("r2 status = %q, stale preparing not cleared", d.Recipes[1].Status)
	}
	if d.Recipes[2].ID == "" {
		t.Errorf("legacy recipe did not get an id assigned")
	}
	if d.Recipes[2].Status != StatusAvailable {
		t.Errorf("legacy recipe status = %q", d.Recipes[2].Status)
	}
}

func TestSyncStatuses_IgnoresBlankRecipeIDs(t *testing.T) {
	d := NewUserData()
	d.Recipes = append(d.Recipes, Recipe{ID: "r1", Name: "Pasta"})
	// A legacy preparation without a recipe id must not mark anything.
	d.ActivePreparations = append(d.ActivePreparations, Preparation{RecipeID: ""})

	d.SyncStatuses()
	if d.Recipes[0].Status != StatusAvailable {
		t.Fatalf("status = %q, want available", d.Recipes[0].Status)
	}
}
