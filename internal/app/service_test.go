package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"morningdeck/api/internal/search"
	"morningdeck/api/internal/store"
)

type fakeSearch struct {
	indexedClients []search.ClientRecord
	indexedNotes   []search.NoteRecord
	deletedClients []string
	deletedNotes   []string
	searchFn       func(search.Query) search.Response
}

func (f *fakeSearch) Search(q search.Query) search.Response {
	if f.searchFn != nil {
		return f.searchFn(q)
	}
	return search.Response{Results: []search.Result{}, Query: q.Text}
}
func (f *fakeSearch) IndexClient(c search.ClientRecord) { f.indexedClients = append(f.indexedClients, c) }
func (f *fakeSearch) IndexNote(n search.NoteRecord)     { f.indexedNotes = append(f.indexedNotes, n) }
func (f *fakeSearch) DeleteClient(id string)            { f.deletedClients = append(f.deletedClients, id) }
func (f *fakeSearch) DeleteNote(id string)              { f.deletedNotes = append(f.deletedNotes, id) }

func TestCreateClientValidation(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input ClientInput
	}{
		{"blank name", ClientInput{Name: "   "}},
		{"bad status", ClientInput{Name: "Acme", Status: "archived"}},
		{"bad priority", ClientInput{Name: "Acme", Priority: "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateClient(ctx, testSession(), tc.input)
			var domainErr *DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestCreateClientNormalizesBulletsAndDefaults(t *testing.T) {
	var created store.Client
	fs := &fakeStore{}
	svc := newTestService(fs)
	svc.store = &fakeStoreWithCreate{fakeStore: fs, onCreate: func(c store.Client) { created = c }}

	_, err := svc.CreateClient(context.Background(), testSession(), ClientInput{
		Name:    "  Acme Corp  ",
		Bullets: "  one  \n\n two \nthree\nfour\nfive\nsix",
	})
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}
	if created.Name != "Acme Corp" {
		t.Errorf("name = %q, want trimmed", created.Name)
	}
	if created.Status != "prospect" || created.Priority != "medium" {
		t.Errorf("defaults = %s/%s, want prospect/medium", created.Status, created.Priority)
	}
	if lines := strings.Split(created.Bullets, "\n"); len(lines) != 5 {
		t.Errorf("bullets kept %d lines, want 5: %q", len(lines), created.Bullets)
	}
}

type fakeStoreWithCreate struct {
	*fakeStore
	onCreate func(store.Client)
}

func (f *fakeStoreWithCreate) CreateClient(ctx context.Context, c store.Client) (int64, error) {
	f.onCreate(c)
	return 1, nil
}

func TestCreateClientIndexesForSearch(t *testing.T) {
	fsch := &fakeSearch{}
	svc := newTestService(&fakeStore{
		getClientFn: func(_ context.Context, ownerID string, clientID int64) (store.Client, error) {
			return store.Client{ID: clientID, OwnerID: ownerID, Name: "Acme", Status: "active"}, nil
		},
	})
	svc.search = fsch

	if _, err := svc.CreateClient(context.Background(), testSession(), ClientInput{Name: "Acme"}); err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}
	if len(fsch.indexedClients) != 1 || fsch.indexedClients[0].Name != "Acme" {
		t.Errorf("indexed clients = %+v, want one Acme record", fsch.indexedClients)
	}
}

func TestDeleteClientRemovesFromIndex(t *testing.T) {
	fsch := &fakeSearch{}
	svc := newTestService(&fakeStore{})
	svc.search = fsch

	if err := svc.DeleteClient(context.Background(), testSession(), 42); err != nil {
		t.Fatalf("DeleteClient() error = %v", err)
	}
	if len(fsch.deletedClients) != 1 || fsch.deletedClients[0] != "42" {
		t.Errorf("deleted ids = %v, want [42]", fsch.deletedClients)
	}
}

func TestCreateNoteRequiresContentAndClient(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()

	_, err := svc.CreateNote(ctx, testSession(), NoteInput{ClientID: 1})
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Errorf("blank content: expected DomainError, got %v", err)
	}

	_, err = svc.CreateNote(ctx, testSession(), NoteInput{Content: "hi"})
	if !errors.As(err, &domainErr) {
		t.Errorf("no client: expected DomainError, got %v", err)
	}
}

func TestListClientsRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(&fakeStore{})
	_, err := svc.ListClients(context.Background(), testSession(), "deleted")
	var domainErr *DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSearchScopedToOwner(t *testing.T) {
	var captured search.Query
	fsch := &fakeSearch{searchFn: func(q search.Query) search.Response {
		captured = q
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}}
	svc := newTestService(&fakeStore{})
	svc.search = fsch

	svc.Search(testSession(), "renewal", "client", 10, 0)
	if captured.OwnerID != "owner-1" {
		t.Errorf("search owner = %q, want owner-1", captured.OwnerID)
	}
	if captured.FilterType != search.ResultClient {
		t.Errorf("filter type = %q, want client", captured.FilterType)
	}
}
