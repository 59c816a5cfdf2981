// Package services – SummaryService
//
// Read-only aggregations over the aggregate: the active-preparation summary
// with overdue and near-due detection, and the completion-history summary
// that caps spoken output at ten entries.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
)

// historyCap is the largest history read out verbatim; beyond it only the
// most recent historyRecent entries are spoken.
const (
	historyCap    = 10
	historyRecent = 5
	nearDueDays   = 2
)

// ActiveSummary describes the active preparations for spoken output.
type ActiveSummary struct {
	Total      int      `json:"total"`
	Details    []string `json:"details"`
	HasOverdue bool     `json:"has_overdue"`
	HasNearDue bool     `json:"has_near_due"`
}

// HistorySummary describes the completion history for spoken output.
// Complete is true when every entry is included; otherwise Details holds the
// most recent entries in reverse-chronological order and Remaining counts
// the rest.
type HistorySummary struct {
	Total     int      `json:"total"`
	Details   []string `json:"details"`
	Complete  bool     `json:"complete"`
	Remaining int      `json:"remaining"`
}

// SummaryService produces the read-only summaries.
type SummaryService struct {
	Store UserDataStore

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(store UserDataStore) *SummaryService {
	return &SummaryService{Store: store, Now: time.Now}
}

// Active summarizes the active preparations, flagging overdue entries
// (due date passed) and near-due ones (due today or within two days).
func (s *SummaryService) Active(ctx context.Context, userID string) (*ActiveSummary, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ActiveSummary{Total: len(data.ActivePreparations)}
	if out.Total == 0 {
		return out, nil
	}

	now := s.Now().UTC()
	for _, p := range data.ActivePreparations {
		detail := fmt.Sprintf("'%s' is being prepared by %s", p.Name, p.Person)
		daysLeft := int(p.DueAt.Sub(now).Hours() / 24)
		switch {
		case p.DueAt.Before(now):
			detail += " (overdue)"
			out.HasOverdue = true
		case daysLeft == 0:
			detail += " (due today)"
			out.HasNearDue = true
		case daysLeft <= nearDueDays:
			detail += fmt.Sprintf(" (due in %d days)", daysLeft)
			out.HasNearDue = true
		}
		out.Details = append(out.Details, detail)
	}
	return out, nil
}

// History summarizes the completion history: the full list verbatim while
// it holds at most historyCap entries, otherwise the historyRecent most
// recent ones newest-first plus a remaining count.
func (s *SummaryService) History(ctx context.Context, userID string) (*HistorySummary, error) {
	data, err := s.Store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := data.CompletionHistory
	out := &HistorySummary{Total: len(history), Complete: true}
	if out.Total == 0 {
		return out, nil
	}

	shown := history
	if out.Total > historyCap {
		out.Complete = false
		out.Remaining = out.Total - historyRecent
		recent := history[out.Total-historyRecent:]
		shown = make([]domain.Completion, 0, historyRecent)
		for i := len(recent) - 1; i >= 0; i-- {
			shown = append(shown, recent[i])
		}
	}

	for _, h := range shown {
		detail := fmt.Sprintf("'%s'", h.Name)
		if h.Person != "" && h.Person != domain.DefaultPerson {
			detail += " prepared with " + h.Person
		}
		out.Details = append(out.Details, detail)
	}
	return out, nil
}
