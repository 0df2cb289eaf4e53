package app

import (
	"context"
	"net/http"
	"time"

	"morningdeck/api/internal/deck"
	"morningdeck/api/internal/store"
	"morningdeck/api/internal/timekey"
)

const (
	needsAttentionAfter = 7 * 24 * time.Hour
	streakLookbackRuns  = 60
)

var allowedOutcomes = map[string]struct{}{
	"reviewed": {},
	"flagged":  {},
}

// TodayDeck is the response for the day's review queue.
type TodayDeck struct {
	Run       store.Run        `json:"run"`
	Created   bool             `json:"created"`
	Items     []store.RunItem  `json:"items"`
	FocusNote *store.FocusNote `json:"focusNote,omitempty"`
}

// Progress is today's review tally. Nil inside DashboardSummary when no run
// exists yet.
type Progress struct {
	Reviewed int  `json:"reviewed"`
	Flagged  int  `json:"flagged"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
}

type DashboardSummary struct {
	Progress       *Progress                `json:"progress"`
	Streak         int                      `json:"streak"`
	NeedsAttention int                      `json:"needsAttention"`
	OverdueTasks   int                      `json:"overdueTasks"`
	PendingTasks   int                      `json:"pendingTasks"`
	Clients        store.ClientStatusCounts `json:"clients"`
}

// GetOrCreateTodayRun resolves today's day key, finds or creates the run,
// fills a fresh run with the ranked active roster, and reconciles an existing
// run against clients activated since it was created. Safe to call
// concurrently: creation is an upsert and item inserts skip duplicates.
func (s *Service) GetOrCreateTodayRun(ctx context.Context, sess Session) (TodayDeck, error) {
	dayKey := timekey.Today()

	run, err := s.store.GetRunByDay(ctx, sess.OwnerID, dayKey)
	if err != nil {
		return TodayDeck{}, err
	}

	created := false
	if run == nil {
		run, created, err = s.store.CreateRun(ctx, sess.OwnerID, dayKey)
		if err != nil {
			return TodayDeck{}, err
		}
		if created {
			if err := s.fillNewRun(ctx, sess.OwnerID, run.ID); err != nil {
				return TodayDeck{}, err
			}
		}
	}

	if !created {
		if err := s.reconcileRun(ctx, sess.OwnerID, run.ID); err != nil {
			return TodayDeck{}, err
		}
	}

	items, err := s.store.ListRunItems(ctx, run.ID, sess.OwnerID)
	if err != nil {
		return TodayDeck{}, err
	}

	focusNote, err := s.store.GetFocusNote(ctx, sess.OwnerID, dayKey)
	if err != nil {
		return TodayDeck{}, err
	}

	return TodayDeck{Run: *run, Created: created, Items: items, FocusNote: focusNote}, nil
}

// fillNewRun ranks the active roster by urgency and inserts line-items with
// ordinals 1..n.
func (s *Service) fillNewRun(ctx context.Context, ownerID string, runID int64) error {
	clients, err := s.store.ListClients(ctx, ownerID, "active")
	if err != nil {
		return err
	}

	ranked := rankClients(clients)
	items := make([]store.NewRunItem, len(ranked))
	for i, c := range ranked {
		items[i] = store.NewRunItem{ClientID: c.ID, Ordinal: i + 1}
	}
	return s.store.InsertRunItems(ctx, runID, ownerID, items)
}

// reconcileRun appends clients that became active after the run was created.
// It diffs against every client ever added to the run, so a client that was
// deactivated mid-day and reactivated keeps its original line-item instead of
// gaining a second one. Existing items are never reordered or mutated.
func (s *Service) reconcileRun(ctx context.Context, ownerID string, runID int64) error {
	clients, err := s.store.ListClients(ctx, ownerID, "active")
	if err != nil {
		return err
	}
	existing, err := s.store.ListRunClientIDs(ctx, runID)
	if err != nil {
		return err
	}

	var missing []store.Client
	for _, c := range clients {
		if !existing[c.ID] {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	maxOrdinal, err := s.store.MaxOrdinal(ctx, runID)
	if err != nil {
		return err
	}

	ranked := rankClients(missing)
	items := make([]store.NewRunItem, len(ranked))
	for i, c := range ranked {
		items[i] = store.NewRunItem{ClientID: c.ID, Ordinal: maxOrdinal + i + 1}
	}
	return s.store.InsertRunItems(ctx, runID, ownerID, items)
}

func rankClients(clients []store.Client) []deck.Candidate {
	candidates := make([]deck.Candidate, len(clients))
	for i, c := range clients {
		candidates[i] = deck.Candidate{
			ID:        c.ID,
			Name:      c.Name,
			Priority:  c.Priority,
			LastTouch: c.LastTouchedAt,
		}
	}
	return deck.Rank(candidates, time.Now())
}

// GetRunLineItems returns the run's line-items joined with live client rows.
// Items whose client is no longer active are filtered at read time.
func (s *Service) GetRunLineItems(ctx context.Context, sess Session, runID int64) ([]store.RunItem, error) {
	return s.store.ListRunItems(ctx, runID, sess.OwnerID)
}

// MarkItem records a review outcome on a line-item. Re-marking an already
// reviewed item overwrites the prior outcome and timestamp. A supplied note
// becomes a standalone client annotation and touches the client.
func (s *Service) MarkItem(ctx context.Context, sess Session, itemID int64, outcome, note string) (store.RunItem, error) {
	if _, ok := allowedOutcomes[outcome]; !ok {
		return store.RunItem{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown outcome", map[string]string{"outcome": outcome})
	}

	item, err := s.store.GetRunItem(ctx, itemID, sess.OwnerID)
	if err != nil {
		return store.RunItem{}, err
	}

	if err := s.store.SetItemOutcome(ctx, itemID, sess.OwnerID, outcome, note); err != nil {
		return store.RunItem{}, err
	}

	if err := s.store.TouchClient(ctx, sess.OwnerID, item.ClientID, false, true); err != nil {
		return store.RunItem{}, err
	}

	if note != "" {
		if _, err := s.store.CreateNote(ctx, store.Note{
			OwnerID:  sess.OwnerID,
			ClientID: item.ClientID,
			Title:    "Review note",
			Content:  note,
		}); err != nil {
			return store.RunItem{}, err
		}
	}

	s.logActivity(ctx, sess.OwnerID, &item.ClientID, "run_item", itemID, outcome, note)

	return s.store.GetRunItem(ctx, itemID, sess.OwnerID)
}

// SetContactMade flips the contact-made flag on a line-item, independent of
// its outcome state. Setting it true also touches the client's last-contact
// timestamp.
func (s *Service) SetContactMade(ctx context.Context, sess Session, itemID int64, made bool) (store.RunItem, error) {
	if !s.store.Capabilities().RunItemContactMade {
		return store.RunItem{}, domainError(http.StatusConflict, "SCHEMA_DRIFT", "Contact tracking is not supported by this database", nil)
	}

	item, err := s.store.GetRunItem(ctx, itemID, sess.OwnerID)
	if err != nil {
		return store.RunItem{}, err
	}

	if err := s.store.SetItemContactMade(ctx, itemID, sess.OwnerID, made); err != nil {
		return store.RunItem{}, err
	}

	if made {
		if err := s.store.TouchClient(ctx, sess.OwnerID, item.ClientID, true, false); err != nil {
			return store.RunItem{}, err
		}
	}

	return s.store.GetRunItem(ctx, itemID, sess.OwnerID)
}

// GetDashboardSummary aggregates today's progress, the completion streak,
// attention and task counts.
func (s *Service) GetDashboardSummary(ctx context.Context, sess Session) (DashboardSummary, error) {
	today := timekey.Today()
	now := time.Now()

	summaries, err := s.store.ListRunSummaries(ctx, sess.OwnerID, streakLookbackRuns)
	if err != nil {
		return DashboardSummary{}, err
	}

	var progress *Progress
	days := make(map[string]bool, len(summaries))
	for _, summary := range summaries {
		days[summary.DayKey] = summary.Complete
		if summary.DayKey == today {
			progress = &Progress{
				Reviewed: summary.Reviewed,
				Flagged:  summary.Flagged,
				Total:    summary.Total,
				Complete: summary.Complete,
			}
		}
	}

	streak := deck.Streak(days, today)

	needsAttention, err := s.store.CountNeedsAttention(ctx, sess.OwnerID, now.Add(-needsAttentionAfter))
	if err != nil {
		return DashboardSummary{}, err
	}

	taskCounts, err := s.store.CountTasks(ctx, sess.OwnerID, now)
	if err != nil {
		return DashboardSummary{}, err
	}

	clientCounts, err := s.store.CountClientStatuses(ctx, sess.OwnerID)
	if err != nil {
		return DashboardSummary{}, err
	}

	return DashboardSummary{
		Progress:       progress,
		Streak:         streak,
		NeedsAttention: needsAttention,
		OverdueTasks:   taskCounts.Overdue,
		PendingTasks:   taskCounts.Pending,
		Clients:        clientCounts,
	}, nil
}

// SaveFocusNote writes the single free-form note attached to today. Last
// write wins.
func (s *Service) SaveFocusNote(ctx context.Context, sess Session, body string) (store.FocusNote, error) {
	return s.store.UpsertFocusNote(ctx, sess.OwnerID, timekey.Today(), body)
}

func (s *Service) GetFocusNote(ctx context.Context, sess Session, dayKey string) (*store.FocusNote, error) {
	if dayKey == "" {
		dayKey = timekey.Today()
	}
	if _, err := timekey.Parse(dayKey); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid day key", map[string]string{"dayKey": dayKey})
	}
	return s.store.GetFocusNote(ctx, sess.OwnerID, dayKey)
}

// ReviewHistory returns recent per-day run aggregates, newest first.
func (s *Service) ReviewHistory(ctx context.Context, sess Session, limit int) ([]store.RunSummary, error) {
	if limit <= 0 || limit > 90 {
		limit = 30
	}
	return s.store.ListRunSummaries(ctx, sess.OwnerID, limit)
}
