package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"morningdeck/api/internal/config"
	"morningdeck/api/internal/store"
	"morningdeck/api/internal/timekey"
)

type fakeStore struct {
	listClientsFn         func(context.Context, string, string) ([]store.Client, error)
	getClientFn           func(context.Context, string, int64) (store.Client, error)
	createNoteFn          func(context.Context, store.Note) (int64, error)
	touchClientFn         func(context.Context, string, int64, bool, bool) error
	countNeedsAttentionFn func(context.Context, string, time.Time) (int, error)
	countTasksFn          func(context.Context, string, time.Time) (store.TaskCounts, error)
	countClientStatusesFn func(context.Context, string) (store.ClientStatusCounts, error)
	insertActivityFn      func(context.Context, store.ActivityEntry) error
	getRunByDayFn         func(context.Context, string, string) (*store.Run, error)
	createRunFn           func(context.Context, string, string) (*store.Run, bool, error)
	insertRunItemsFn      func(context.Context, int64, string, []store.NewRunItem) error
	listRunItemsFn        func(context.Context, int64, string) ([]store.RunItem, error)
	listRunClientIDsFn    func(context.Context, int64) (map[int64]bool, error)
	maxOrdinalFn          func(context.Context, int64) (int, error)
	getRunItemFn          func(context.Context, int64, string) (store.RunItem, error)
	setItemOutcomeFn      func(context.Context, int64, string, string, string) error
	setItemContactMadeFn  func(context.Context, int64, string, bool) error
	listRunSummariesFn    func(context.Context, string, int) ([]store.RunSummary, error)
	upsertFocusNoteFn     func(context.Context, string, string, string) (store.FocusNote, error)
	getFocusNoteFn        func(context.Context, string, string) (*store.FocusNote, error)
	caps                  store.Capabilities
}

func (f *fakeStore) ListClients(ctx context.Context, ownerID, status string) ([]store.Client, error) {
	if f.listClientsFn != nil {
		return f.listClientsFn(ctx, ownerID, status)
	}
	return nil, nil
}
func (f *fakeStore) GetClient(ctx context.Context, ownerID string, clientID int64) (store.Client, error) {
	if f.getClientFn != nil {
		return f.getClientFn(ctx, ownerID, clientID)
	}
	return store.Client{ID: clientID, OwnerID: ownerID}, nil
}
func (f *fakeStore) CreateClient(context.Context, store.Client) (int64, error) { return 1, nil }
func (f *fakeStore) UpdateClient(context.Context, string, int64, store.ClientUpdate) error {
	return nil
}
func (f *fakeStore) DeleteClient(context.Context, string, int64) error { return nil }
func (f *fakeStore) TouchClient(ctx context.Context, ownerID string, clientID int64, contact, reviewed bool) error {
	if f.touchClientFn != nil {
		return f.touchClientFn(ctx, ownerID, clientID, contact, reviewed)
	}
	return nil
}
func (f *fakeStore) CountClientStatuses(ctx context.Context, ownerID string) (store.ClientStatusCounts, error) {
	if f.countClientStatusesFn != nil {
		return f.countClientStatusesFn(ctx, ownerID)
	}
	return store.ClientStatusCounts{}, nil
}
func (f *fakeStore) CountNeedsAttention(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	if f.countNeedsAttentionFn != nil {
		return f.countNeedsAttentionFn(ctx, ownerID, cutoff)
	}
	return 0, nil
}
func (f *fakeStore) ListContacts(context.Context, string, int64) ([]store.Contact, error) {
	return nil, nil
}
func (f *fakeStore) CreateContact(context.Context, store.Contact) (int64, error) { return 1, nil }
func (f *fakeStore) UpdateContact(context.Context, string, int64, store.ContactUpdate) error {
	return nil
}
func (f *fakeStore) DeleteContact(context.Context, string, int64) error { return nil }
func (f *fakeStore) ListNotes(context.Context, string, int64) ([]store.Note, error) {
	return nil, nil
}
func (f *fakeStore) CreateNote(ctx context.Context, note store.Note) (int64, error) {
	if f.createNoteFn != nil {
		return f.createNoteFn(ctx, note)
	}
	return 1, nil
}
func (f *fakeStore) UpdateNote(context.Context, string, int64, store.NoteUpdate) error { return nil }
func (f *fakeStore) DeleteNote(context.Context, string, int64) error                   { return nil }
func (f *fakeStore) ListTasks(context.Context, string, int64, string) ([]store.Task, error) {
	return nil, nil
}
func (f *fakeStore) UpcomingTasks(context.Context, string, int64, int) ([]store.Task, error) {
	return nil, nil
}
func (f *fakeStore) CreateTask(context.Context, store.Task) (int64, error) { return 1, nil }
func (f *fakeStore) UpdateTask(context.Context, string, int64, store.TaskUpdate) error {
	return nil
}
func (f *fakeStore) DeleteTask(context.Context, string, int64) error { return nil }
func (f *fakeStore) CountTasks(ctx context.Context, ownerID string, now time.Time) (store.TaskCounts, error) {
	if f.countTasksFn != nil {
		return f.countTasksFn(ctx, ownerID, now)
	}
	return store.TaskCounts{}, nil
}
func (f *fakeStore) ListTags(context.Context, string) ([]store.Tag, error)  { return nil, nil }
func (f *fakeStore) CreateTag(context.Context, store.Tag) (int64, error)    { return 1, nil }
func (f *fakeStore) UpdateTag(context.Context, string, int64, *string, *string) error {
	return nil
}
func (f *fakeStore) DeleteTag(context.Context, string, int64) error { return nil }
func (f *fakeStore) ListClientTags(context.Context, string, int64) ([]store.ClientTag, error) {
	return nil, nil
}
func (f *fakeStore) AddClientTag(context.Context, string, int64, int64) error    { return nil }
func (f *fakeStore) RemoveClientTag(context.Context, string, int64, int64) error { return nil }
func (f *fakeStore) InsertActivity(ctx context.Context, entry store.ActivityEntry) error {
	if f.insertActivityFn != nil {
		return f.insertActivityFn(ctx, entry)
	}
	return nil
}
func (f *fakeStore) ListActivity(context.Context, string, int64, int) ([]store.ActivityEntry, error) {
	return nil, nil
}
func (f *fakeStore) GetRunByDay(ctx context.Context, ownerID, dayKey string) (*store.Run, error) {
	if f.getRunByDayFn != nil {
		return f.getRunByDayFn(ctx, ownerID, dayKey)
	}
	return nil, nil
}
func (f *fakeStore) CreateRun(ctx context.Context, ownerID, dayKey string) (*store.Run, bool, error) {
	if f.createRunFn != nil {
		return f.createRunFn(ctx, ownerID, dayKey)
	}
	return &store.Run{ID: 1, OwnerID: ownerID, DayKey: dayKey}, true, nil
}
func (f *fakeStore) InsertRunItems(ctx context.Context, runID int64, ownerID string, items []store.NewRunItem) error {
	if f.insertRunItemsFn != nil {
		return f.insertRunItemsFn(ctx, runID, ownerID, items)
	}
	return nil
}
func (f *fakeStore) ListRunItems(ctx context.Context, runID int64, ownerID string) ([]store.RunItem, error) {
	if f.listRunItemsFn != nil {
		return f.listRunItemsFn(ctx, runID, ownerID)
	}
	return nil, nil
}
func (f *fakeStore) ListRunClientIDs(ctx context.Context, runID int64) (map[int64]bool, error) {
	if f.listRunClientIDsFn != nil {
		return f.listRunClientIDsFn(ctx, runID)
	}
	return map[int64]bool{}, nil
}
func (f *fakeStore) MaxOrdinal(ctx context.Context, runID int64) (int, error) {
	if f.maxOrdinalFn != nil {
		return f.maxOrdinalFn(ctx, runID)
	}
	return 0, nil
}
func (f *fakeStore) GetRunItem(ctx context.Context, itemID int64, ownerID string) (store.RunItem, error) {
	if f.getRunItemFn != nil {
		return f.getRunItemFn(ctx, itemID, ownerID)
	}
	return store.RunItem{}, sql.ErrNoRows
}
func (f *fakeStore) SetItemOutcome(ctx context.Context, itemID int64, ownerID, outcome, note string) error {
	if f.setItemOutcomeFn != nil {
		return f.setItemOutcomeFn(ctx, itemID, ownerID, outcome, note)
	}
	return nil
}
func (f *fakeStore) SetItemContactMade(ctx context.Context, itemID int64, ownerID string, made bool) error {
	if f.setItemContactMadeFn != nil {
		return f.setItemContactMadeFn(ctx, itemID, ownerID, made)
	}
	return nil
}
func (f *fakeStore) ListRunSummaries(ctx context.Context, ownerID string, limit int) ([]store.RunSummary, error) {
	if f.listRunSummariesFn != nil {
		return f.listRunSummariesFn(ctx, ownerID, limit)
	}
	return nil, nil
}
func (f *fakeStore) UpsertFocusNote(ctx context.Context, ownerID, dayKey, body string) (store.FocusNote, error) {
	if f.upsertFocusNoteFn != nil {
		return f.upsertFocusNoteFn(ctx, ownerID, dayKey, body)
	}
	return store.FocusNote{OwnerID: ownerID, DayKey: dayKey, Body: body}, nil
}
func (f *fakeStore) GetFocusNote(ctx context.Context, ownerID, dayKey string) (*store.FocusNote, error) {
	if f.getFocusNoteFn != nil {
		return f.getFocusNoteFn(ctx, ownerID, dayKey)
	}
	return nil, nil
}
func (f *fakeStore) Capabilities() store.Capabilities { return f.caps }
func (f *fakeStore) Ping(context.Context) error       { return nil }

func newTestService(fs *fakeStore) *Service {
	return &Service{cfg: config.Config{}, store: fs}
}

func testSession() Session {
	return Session{Token: "sess_test", OwnerID: "owner-1"}
}

func daysAgo(n int) *time.Time {
	t := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestGetOrCreateTodayRunFirstVisitFillsRankedQueue(t *testing.T) {
	var inserted []store.NewRunItem
	fs := &fakeStore{
		listClientsFn: func(_ context.Context, ownerID, status string) ([]store.Client, error) {
			if status != "active" {
				t.Fatalf("expected active filter, got %q", status)
			}
			return []store.Client{
				{ID: 1, Name: "Acme", Priority: "low", LastTouchedAt: daysAgo(1)},
				{ID: 2, Name: "Beta", Priority: "high", LastTouchedAt: nil},
				{ID: 3, Name: "Gamma", Priority: "high", LastTouchedAt: daysAgo(30)},
			}, nil
		},
		insertRunItemsFn: func(_ context.Context, runID int64, _ string, items []store.NewRunItem) error {
			inserted = items
			return nil
		},
	}
	svc := newTestService(fs)

	deckResp, err := svc.GetOrCreateTodayRun(context.Background(), testSession())
	if err != nil {
		t.Fatalf("GetOrCreateTodayRun() error = %v", err)
	}
	if !deckResp.Created {
		t.Fatal("expected a freshly created run")
	}
	if deckResp.Run.DayKey != timekey.Today() {
		t.Errorf("run day key = %q, want today's", deckResp.Run.DayKey)
	}

	if len(inserted) != 3 {
		t.Fatalf("inserted %d items, want 3", len(inserted))
	}
	// Never-touched high outranks stale high outranks recent low.
	wantClients := []int64{2, 3, 1}
	for i, item := range inserted {
		if item.ClientID != wantClients[i] {
			t.Errorf("position %d = client %d, want %d", i, item.ClientID, wantClients[i])
		}
		if item.Ordinal != i+1 {
			t.Errorf("position %d ordinal = %d, want %d", i, item.Ordinal, i+1)
		}
	}
}

func TestGetOrCreateTodayRunExistingRunNoNewClients(t *testing.T) {
	createCalls := 0
	insertCalls := 0
	fs := &fakeStore{
		getRunByDayFn: func(_ context.Context, ownerID, dayKey string) (*store.Run, error) {
			return &store.Run{ID: 7, OwnerID: ownerID, DayKey: dayKey}, nil
		},
		createRunFn: func(context.Context, string, string) (*store.Run, bool, error) {
			createCalls++
			return nil, false, nil
		},
		listClientsFn: func(context.Context, string, string) ([]store.Client, error) {
			return []store.Client{{ID: 1, Name: "Acme"}}, nil
		},
		listRunClientIDsFn: func(context.Context, int64) (map[int64]bool, error) {
			return map[int64]bool{1: true}, nil
		},
		insertRunItemsFn: func(context.Context, int64, string, []store.NewRunItem) error {
			insertCalls++
			return nil
		},
	}
	svc := newTestService(fs)

	deckResp, err := svc.GetOrCreateTodayRun(context.Background(), testSession())
	if err != nil {
		t.Fatalf("GetOrCreateTodayRun() error = %v", err)
	}
	if deckResp.Created {
		t.Error("expected existing run, not created")
	}
	if createCalls != 0 {
		t.Errorf("CreateRun called %d times on existing run", createCalls)
	}
	if insertCalls != 0 {
		t.Errorf("InsertRunItems called %d times with nothing to append", insertCalls)
	}
}

func TestReconcileAppendsNewlyActiveAfterMaxOrdinal(t *testing.T) {
	var appended []store.NewRunItem
	fs := &fakeStore{
		getRunByDayFn: func(_ context.Context, ownerID, dayKey string) (*store.Run, error) {
			return &store.Run{ID: 7, OwnerID: ownerID, DayKey: dayKey}, nil
		},
		listClientsFn: func(context.Context, string, string) ([]store.Client, error) {
			return []store.Client{
				{ID: 1, Name: "Acme"},
				{ID: 2, Name: "Beta"},
				{ID: 3, Name: "Gamma", Priority: "high"},
				{ID: 4, Name: "Delta", Priority: "low", LastTouchedAt: daysAgo(2)},
			}, nil
		},
		listRunClientIDsFn: func(context.Context, int64) (map[int64]bool, error) {
			return map[int64]bool{1: true, 2: true}, nil
		},
		maxOrdinalFn: func(context.Context, int64) (int, error) { return 5, nil },
		insertRunItemsFn: func(_ context.Context, runID int64, _ string, items []store.NewRunItem) error {
			if runID != 7 {
				t.Fatalf("append hit run %d, want 7", runID)
			}
			appended = items
			return nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.GetOrCreateTodayRun(context.Background(), testSession()); err != nil {
		t.Fatalf("GetOrCreateTodayRun() error = %v", err)
	}

	if len(appended) != 2 {
		t.Fatalf("appended %d items, want 2", len(appended))
	}
	// New items are ranked among themselves and continue after the max.
	if appended[0].ClientID != 3 || appended[0].Ordinal != 6 {
		t.Errorf("first appended = client %d ordinal %d, want client 3 ordinal 6", appended[0].ClientID, appended[0].Ordinal)
	}
	if appended[1].ClientID != 4 || appended[1].Ordinal != 7 {
		t.Errorf("second appended = client %d ordinal %d, want client 4 ordinal 7", appended[1].ClientID, appended[1].Ordinal)
	}
}

func TestReconcileSkipsClientsEverAddedToRun(t *testing.T) {
	insertCalls := 0
	fs := &fakeStore{
		getRunByDayFn: func(_ context.Context, ownerID, dayKey string) (*store.Run, error) {
			return &store.Run{ID: 7, OwnerID: ownerID, DayKey: dayKey}, nil
		},
		listClientsFn: func(context.Context, string, string) ([]store.Client, error) {
			return []store.Client{{ID: 1}, {ID: 2}}, nil
		},
		// Client 2 was deactivated mid-day (filtered from the joined read)
		// but its line-item still exists; reactivation must not duplicate it.
		listRunClientIDsFn: func(context.Context, int64) (map[int64]bool, error) {
			return map[int64]bool{1: true, 2: true}, nil
		},
		insertRunItemsFn: func(context.Context, int64, string, []store.NewRunItem) error {
			insertCalls++
			return nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.GetOrCreateTodayRun(context.Background(), testSession()); err != nil {
		t.Fatalf("GetOrCreateTodayRun() error = %v", err)
	}
	if insertCalls != 0 {
		t.Errorf("InsertRunItems called %d times, reactivated client must not be re-added", insertCalls)
	}
}

func TestMarkItemRejectsUnknownOutcome(t *testing.T) {
	storeTouched := false
	fs := &fakeStore{
		setItemOutcomeFn: func(context.Context, int64, string, string, string) error {
			storeTouched = true
			return nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.MarkItem(context.Background(), testSession(), 5, "bogus", "")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if storeTouched {
		t.Error("storage written before validation")
	}
}

func TestMarkItemWithNoteCreatesAnnotationAndTouches(t *testing.T) {
	var outcomeSet, noteCreated bool
	var touchedReviewed bool
	fs := &fakeStore{
		getRunItemFn: func(_ context.Context, itemID int64, ownerID string) (store.RunItem, error) {
			return store.RunItem{ID: itemID, OwnerID: ownerID, ClientID: 42, Outcome: "reviewed"}, nil
		},
		setItemOutcomeFn: func(_ context.Context, itemID int64, _ string, outcome, note string) error {
			outcomeSet = true
			if outcome != "reviewed" || note != "follow up monday" {
				t.Fatalf("outcome/note = %q/%q", outcome, note)
			}
			return nil
		},
		touchClientFn: func(_ context.Context, _ string, clientID int64, contact, reviewed bool) error {
			if clientID == 42 && reviewed {
				touchedReviewed = true
			}
			return nil
		},
		createNoteFn: func(_ context.Context, note store.Note) (int64, error) {
			noteCreated = true
			if note.ClientID != 42 || note.Content != "follow up monday" {
				t.Fatalf("annotation = %+v", note)
			}
			return 9, nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.MarkItem(context.Background(), testSession(), 5, "reviewed", "follow up monday"); err != nil {
		t.Fatalf("MarkItem() error = %v", err)
	}
	if !outcomeSet || !noteCreated || !touchedReviewed {
		t.Errorf("outcomeSet=%v noteCreated=%v touchedReviewed=%v, want all true", outcomeSet, noteCreated, touchedReviewed)
	}
}

func TestMarkItemFlaggedWithoutNoteSkipsAnnotation(t *testing.T) {
	noteCreated := false
	fs := &fakeStore{
		getRunItemFn: func(_ context.Context, itemID int64, ownerID string) (store.RunItem, error) {
			return store.RunItem{ID: itemID, OwnerID: ownerID, ClientID: 42, Outcome: "flagged"}, nil
		},
		createNoteFn: func(context.Context, store.Note) (int64, error) {
			noteCreated = true
			return 9, nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.MarkItem(context.Background(), testSession(), 5, "flagged", ""); err != nil {
		t.Fatalf("MarkItem() error = %v", err)
	}
	if noteCreated {
		t.Error("flagged without a note must not create an annotation")
	}
}

func TestSetContactMadeRequiresSchemaCapability(t *testing.T) {
	fs := &fakeStore{caps: store.Capabilities{RunItemContactMade: false}}
	svc := newTestService(fs)

	_, err := svc.SetContactMade(context.Background(), testSession(), 5, true)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "SCHEMA_DRIFT" {
		t.Fatalf("expected SCHEMA_DRIFT, got %v", err)
	}
}

func TestSetContactMadeTouchesContactTimestamp(t *testing.T) {
	var touchedContact bool
	fs := &fakeStore{
		caps: store.Capabilities{RunItemContactMade: true},
		getRunItemFn: func(_ context.Context, itemID int64, ownerID string) (store.RunItem, error) {
			return store.RunItem{ID: itemID, OwnerID: ownerID, ClientID: 42, ContactMade: true}, nil
		},
		touchClientFn: func(_ context.Context, _ string, clientID int64, contact, reviewed bool) error {
			if clientID == 42 && contact {
				touchedContact = true
			}
			return nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.SetContactMade(context.Background(), testSession(), 5, true); err != nil {
		t.Fatalf("SetContactMade() error = %v", err)
	}
	if !touchedContact {
		t.Error("setting contact made must touch the client's contact timestamp")
	}
}

func TestSetContactMadeFalseDoesNotTouch(t *testing.T) {
	touched := false
	fs := &fakeStore{
		caps: store.Capabilities{RunItemContactMade: true},
		getRunItemFn: func(_ context.Context, itemID int64, ownerID string) (store.RunItem, error) {
			return store.RunItem{ID: itemID, OwnerID: ownerID, ClientID: 42}, nil
		},
		touchClientFn: func(context.Context, string, int64, bool, bool) error {
			touched = true
			return nil
		},
	}
	svc := newTestService(fs)

	if _, err := svc.SetContactMade(context.Background(), testSession(), 5, false); err != nil {
		t.Fatalf("SetContactMade() error = %v", err)
	}
	if touched {
		t.Error("clearing contact made must not touch the client")
	}
}

func TestDashboardSummaryProgressAndStreak(t *testing.T) {
	today := timekey.Today()
	fs := &fakeStore{
		listRunSummariesFn: func(context.Context, string, int) ([]store.RunSummary, error) {
			return []store.RunSummary{
				{DayKey: today, Total: 5, Reviewed: 2, Flagged: 1, Pending: 2, Complete: false},
				{DayKey: timekey.AddDays(today, -1), Total: 3, Reviewed: 3, Complete: true},
				{DayKey: timekey.AddDays(today, -2), Total: 4, Reviewed: 4, Complete: true},
			}, nil
		},
		countNeedsAttentionFn: func(context.Context, string, time.Time) (int, error) { return 3, nil },
		countTasksFn: func(context.Context, string, time.Time) (store.TaskCounts, error) {
			return store.TaskCounts{Pending: 6, Overdue: 2}, nil
		},
	}
	svc := newTestService(fs)

	summary, err := svc.GetDashboardSummary(context.Background(), testSession())
	if err != nil {
		t.Fatalf("GetDashboardSummary() error = %v", err)
	}
	if summary.Progress == nil {
		t.Fatal("expected progress for today's run")
	}
	if summary.Progress.Reviewed != 2 || summary.Progress.Flagged != 1 || summary.Progress.Total != 5 {
		t.Errorf("progress = %+v", summary.Progress)
	}
	// Today is incomplete, so the streak counts only the two prior days.
	if summary.Streak != 2 {
		t.Errorf("streak = %d, want 2", summary.Streak)
	}
	if summary.NeedsAttention != 3 || summary.OverdueTasks != 2 || summary.PendingTasks != 6 {
		t.Errorf("counts = %+v", summary)
	}
}

func TestDashboardSummaryNoRunToday(t *testing.T) {
	fs := &fakeStore{
		listRunSummariesFn: func(context.Context, string, int) ([]store.RunSummary, error) {
			return nil, nil
		},
	}
	svc := newTestService(fs)

	summary, err := svc.GetDashboardSummary(context.Background(), testSession())
	if err != nil {
		t.Fatalf("GetDashboardSummary() error = %v", err)
	}
	if summary.Progress != nil {
		t.Error("progress must be nil before today's run exists")
	}
	if summary.Streak != 0 {
		t.Errorf("streak = %d, want 0", summary.Streak)
	}
}

func TestStorageUnavailableSurfacesAsRetryable(t *testing.T) {
	fs := &fakeStore{
		getRunByDayFn: func(context.Context, string, string) (*store.Run, error) {
			return nil, unavailableErr()
		},
	}
	svc := newTestService(fs)

	_, err := svc.GetOrCreateTodayRun(context.Background(), testSession())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable to propagate, got %v", err)
	}
	status, code, _, _ := mapError(err)
	if status != 503 || code != "STORAGE_UNAVAILABLE" {
		t.Errorf("mapped to %d/%s, want 503/STORAGE_UNAVAILABLE", status, code)
	}
}

func unavailableErr() error {
	return fmt.Errorf("get run by day: %w: connection refused", store.ErrUnavailable)
}

func TestGetFocusNoteRejectsBadDayKey(t *testing.T) {
	svc := newTestService(&fakeStore{})
	_, err := svc.GetFocusNote(context.Background(), testSession(), "28-08-2026")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSaveFocusNoteUsesTodayKey(t *testing.T) {
	var savedKey string
	fs := &fakeStore{
		upsertFocusNoteFn: func(_ context.Context, ownerID, dayKey, body string) (store.FocusNote, error) {
			savedKey = dayKey
			return store.FocusNote{OwnerID: ownerID, DayKey: dayKey, Body: body}, nil
		},
	}
	svc := newTestService(fs)

	note, err := svc.SaveFocusNote(context.Background(), testSession(), "ship the quarterly review")
	if err != nil {
		t.Fatalf("SaveFocusNote() error = %v", err)
	}
	if savedKey != timekey.Today() {
		t.Errorf("saved under %q, want today's key", savedKey)
	}
	if note.Body != "ship the quarterly review" {
		t.Errorf("body = %q", note.Body)
	}
}
