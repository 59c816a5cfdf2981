// Package dialogue implements the turn-based conversation layer: a
// per-session slot-filling state machine for multi-turn recipe creation,
// list-browsing cursors, and the phrase tables that shape spoken responses.
// Session state is ephemeral and keyed by conversation session, never by
// user; nothing in this package touches persisted data directly except
// through the injected services.
package dialogue

import (
	"time"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// State is the slot-filling position of a session. The zero value is Idle.
//
// The machine advances strictly Idle → AwaitingName → AwaitingIngredients →
// AwaitingType; completing or abandoning the flow returns to Idle. The next
// state is always derived from whichever required field is still unset after
// merging the current turn, so a single utterance carrying every slot skips
// straight to completion.
type State int

const (
	StateIdle State = iota
	StateAwaitingName
	StateAwaitingIngredients
	StateAwaitingType
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingIngredients:
		return "awaiting_ingredients"
	case StateAwaitingType:
		return "awaiting_type"
	default:
		return "unknown"
	}
}

// Session is the typed payload of one conversational session: the staged
// slot values of an in-progress recipe creation plus the list-browsing
// cursor. Cleared wholesale on flow completion, cancellation, or error.
type Session struct {
	State State

	// Staged slot values for the add-recipe flow.
	Name        string
	Ingredients string
	Type        string

	// List browsing: the filtered snapshot being paged through, the next
	// page index, and whether a listing is in progress.
	Listing  bool
	ListPage int
	Filtered []domain.Recipe

	touchedAt time.Time
}

// InFlow reports whether an add-recipe flow is in progress.
func (s *Session) InFlow() bool { return s.State != StateIdle }

// reset returns the session to its zero state.
func (s *Session) reset() {
	*s = Session{touchedAt: s.touchedAt}
}
