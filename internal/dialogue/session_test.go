package dialogue

import (
	"strings"
	"testing"
	"time"
)

func TestSessionStore_ReusesLiveSession(t *testing.T) {
	st := NewSessionStore(time.Minute)

	s := st.Get("s1")
	s.State = StateAwaitingName
	s.Name = "Pasta"

	again := st.Get("s1")
	if again != s {
		t.Fatalf("expected the same session pointer back")
	}
	if again.State != StateAwaitingName || again.Name != "Pasta" {
		t.Fatalf("staged state lost: %+v", again)
	}
}

func TestSessionStore_ExpiresAfterTTL(t *testing.T) {
	st := NewSessionStore(time.Minute)
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	st.Get("s1").State = StateAwaitingType

	// Just under the TTL the session survives and the touch resets the clock.
	base = base.Add(59 * time.Second)
	if got := st.Get("s1").State; got != StateAwaitingType {
		t.Fatalf("state = %v before TTL, want awaiting_type", got)
	}

	base = base.Add(time.Minute)
	if got := st.Get("s1").State; got != StateIdle {
		t.Fatalf("expired session must come back idle, got %v", got)
	}
}

func TestSessionStore_Clear(t *testing.T) {
	st := NewSessionStore(time.Minute)
	st.Get("s1").State = StateAwaitingName

	st.Clear("s1")
	if st.Get("s1").InFlow() {
		t.Fatalf("cleared session must be idle")
	}
}

func TestSessionStore_ActiveFlows(t *testing.T) {
	st := NewSessionStore(time.Minute)
	st.Get("a").State = StateAwaitingName
	st.Get("b").State = StateAwaitingIngredients
	st.Get("c") // idle
	st.Get("d").Listing = true

	if got := st.ActiveFlows(); got != 2 {
		t.Fatalf("active flows = %d, want 2 (listing cursors don't count)", got)
	}
}

func TestSessionReset_KeepsTouchTime(t *testing.T) {
	s := &Session{
		State:       StateAwaitingType,
		Name:        "Pasta",
		Ingredients: "Tomato",
		Listing:     true,
		ListPage:    2,
		touchedAt:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	s.reset()

	if s.InFlow() || s.Name != "" || s.Listing || s.ListPage != 0 {
		t.Fatalf("reset left state behind: %+v", s)
	}
	if s.touchedAt.IsZero() {
		t.Fatalf("reset must preserve the touch time")
	}
}

func TestWelcomeMessage(t *testing.T) {
	pinPhrases(t)

	first := welcomeMessage(0, 0, false)
	if want := "I'm your recipe assistant"; !strings.Contains(first, want) {
		t.Fatalf("first contact = %q, want mention of %q", first, want)
	}

	// Frequent flag alone is not enough; an empty book still gets the pitch.
	if got := welcomeMessage(0, 0, true); !strings.Contains(got, "I'm your recipe assistant") {
		t.Fatalf("empty book = %q", got)
	}

	recap := welcomeMessage(4, 2, true)
	if !strings.Contains(recap, "4 recipes") || !strings.Contains(recap, "2 active preparations") {
		t.Fatalf("recap = %q", recap)
	}
}

func TestJoinQuoted(t *testing.T) {
	if got := joinQuoted([]string{"A", "B"}); got != "'A', 'B'" {
		t.Fatalf("joinQuoted = %q", got)
	}
	if got := joinQuoted(nil); got != "" {
		t.Fatalf("joinQuoted(nil) = %q", got)
	}
}
