package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

func TestPreparationStart_NotFound(t *testing.T) {
	svc := NewPreparationService(newFakeStore(), 7)

	_, err := svc.Start(context.Background(), "u1", "Ghost", "")
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestPreparationStart_Success(t *testing.T) {
	store := newFakeStore()
	recipes := NewRecipeService(store, 10)
	svc := NewPreparationService(store, 7)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Now = fixedClock(now)

	if _, err := recipes.Add(ctx, "u1", "Pasta", "", ""); err != nil {
		t.Fatal(err)
	}

	prep, err := svc.Start(ctx, "u1", "pasta", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if prep.Person != domain.DefaultPerson {
		t.Fatalf("person = %q, want default", prep.Person)
	}
	if !prep.DueAt.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("due = %v, want now+7d", prep.DueAt)
	}
	if !strings.HasPrefix(prep.ID, "PREP-20250310-") {
		t.Fatalf("prep id = %q", prep.ID)
	}
	if prep.Status != domain.PrepStatusActive {
		t.Fatalf("status = %q", prep.Status)
	}

	data := store.data["u1"]
	if data.Recipes[0].Status != domain.StatusPreparing {
		t.Fatalf("recipe status = %q, want preparing", data.Recipes[0].Status)
	}
	if data.Recipes[0].TotalPreparations != 1 || data.Stats.TotalPreparations != 1 {
		t.Fatalf("counters: recipe=%d aggregate=%d, want 1/1",
			data.Recipes[0].TotalPreparations, data.Stats.TotalPreparations)
	}
}

func TestPreparationStart_AlreadyPreparing(t *testing.T) {
	store := newFakeStore()
	recipes := NewRecipeService(store, 10)
	svc := NewPreparationService(store, 7)
	ctx := context.Background()

	if _, err := recipes.Add(ctx, "u1", "Pasta", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "u1", "Pasta", "Ana"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Start(ctx, "u1", "Pasta", "Bob")
	if !errors.Is(err, ErrAlreadyPreparing) {
		t.Fatalf("expected ErrAlreadyPreparing, got %v", err)
	}
	if n := len(store.data["u1"].ActivePreparations); n != 1 {
		t.Fatalf("active preparations = %d, want 1 (no duplicate entry)", n)
	}
}

func TestPreparationComplete_EmptyActiveList(t *testing.T) {
	svc := NewPreparationService(newFakeStore(), 7)

	_, err := svc.Complete(context.Background(), "u1", "Pasta", "")
	if !errors.Is(err, ErrNoActivePreparations) {
		t.Fatalf("expected ErrNoActivePreparations, got %v", err)
	}
}

func TestPreparationComplete_MovesExactlyOneEntry(t *testing.T) {
	store := newFakeStore()
	recipes := NewRecipeService(store, 10)
	svc := NewPreparationService(store, 7)
	ctx := context.Background()

	for _, name := range []string{"Pasta", "Salad"} {
		if _, err := recipes.Add(ctx, "u1", name, "", ""); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Start(ctx, "u1", name, ""); err != nil {
			t.Fatal(err)
		}
	}

	completion, err := svc.Complete(ctx, "u1", "pas", "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completion.Name != "Pasta" {
		t.Fatalf("completed %q, want Pasta (substring match)", completion.Name)
	}
	if completion.Status != domain.PrepStatusCompleted {
		t.Fatalf("status = %q", completion.Status)
	}

	data := store.data["u1"]
	if len(data.ActivePreparations) != 1 || len(data.CompletionHistory) != 1 {
		t.Fatalf("active=%d history=%d, want 1/1",
			len(data.ActivePreparations), len(data.CompletionHistory))
	}
	if data.Stats.TotalCompletions != 1 {
		t.Fatalf("total_completions = %d", data.Stats.TotalCompletions)
	}
	data.SyncStatuses()
	for _, r := range data.Recipes {
		want := domain.StatusAvailable
		if r.Name == "Salad" {
			want = domain.StatusPreparing
		}
		if r.Status != want {
			t.Errorf("recipe %s status = %q, want %q", r.Name, r.Status, want)
		}
	}
}

func TestPreparationComplete_IDTakesPrecedence(t *testing.T) {
	store := newFakeStore()
	recipes := NewRecipeService(store, 10)
	svc := NewPreparationService(store, 7)
	ctx := context.Background()

	if _, err := recipes.Add(ctx, "u1", "Pasta", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := recipes.Add(ctx, "u1", "Pizza", "", ""); err != nil {
		t.Fatal(err)
	}
	p1, err := svc.Start(ctx, "u1", "Pasta", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "u1", "Pizza", ""); err != nil {
		t.Fatal(err)
	}

	// Name points at Pizza, id at Pasta: the id must win.
	completion, err := svc.Complete(ctx, "u1", "Pizza", p1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if completion.Name != "Pasta" {
		t.Fatalf("completed %q, want Pasta (id precedence)", completion.Name)
	}
}

func TestPreparationComplete_NotFound(t *testing.T) {
	store := newFakeStore()
	recipes := NewRecipeService(store, 10)
	svc := NewPreparationService(store, 7)
	ctx := context.Background()

	if _, err := recipes.Add(ctx, "u1", "Pasta", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "u1", "Pasta", ""); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Complete(ctx, "u1", "Tiramisu", "")
	if !errors.Is(err, ErrPreparationNotFound) {
		t.Fatalf("expected ErrPreparationNotFound, got %v", err)
	}
}

func TestPreparationComplete_OnTimeBoundary(t *testing.T) {
	tests := []struct {
		name       string
		lateBy     time.Duration
		wantOnTime bool
	}{
		{"well before due", -24 * time.Hour, true},
		{"exactly at due", 0, true},
		{"after due", time.Minute, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			recipes := NewRecipeService(store, 10)
			svc := NewPreparationService(store, 7)
			ctx := context.Background()

			started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
			svc.Now = fixedClock(started)

			if _, err := recipes.Add(ctx, "u1", "Pasta", "", ""); err != nil {
				t.Fatal(err)
			}
			prep, err := svc.Start(ctx, "u1", "Pasta", "")
			if err != nil {
				t.Fatal(err)
			}

			svc.Now = fixedClock(prep.DueAt.Add(tc.lateBy))
			completion, err := svc.Complete(ctx, "u1", "Pasta", "")
			if err != nil {
				t.Fatal(err)
			}
			if completion.CompletedOnTime != tc.wantOnTime {
				t.Fatalf("completed_on_time = %v, want %v", completion.CompletedOnTime, tc.wantOnTime)
			}
		})
	}
}
