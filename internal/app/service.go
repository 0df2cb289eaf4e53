package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"morningdeck/api/internal/config"
	"morningdeck/api/internal/deck"
	"morningdeck/api/internal/search"
	"morningdeck/api/internal/session"
	"morningdeck/api/internal/store"
	"morningdeck/api/internal/util"
)

type Session struct {
	Token   string
	OwnerID string
	Name    string
	Email   string
}

type ClientInput struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Industry    string `json:"industry"`
	Revenue     string `json:"revenue"`
	HealthScore int    `json:"healthScore"`
	Bullets     string `json:"bullets"`
}

type ClientUpdateInput struct {
	Name        *string `json:"name"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Industry    *string `json:"industry"`
	Revenue     *string `json:"revenue"`
	HealthScore *int    `json:"healthScore"`
	Bullets     *string `json:"bullets"`
}

type ContactInput struct {
	ClientID  int64  `json:"clientId"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"isPrimary"`
	Notes     string `json:"notes"`
}

type ContactUpdateInput struct {
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IsPrimary *bool   `json:"isPrimary"`
	Notes     *string `json:"notes"`
}

type NoteInput struct {
	ClientID int64  `json:"clientId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPinned bool   `json:"isPinned"`
}

type NoteUpdateInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsPinned *bool   `json:"isPinned"`
}

type TaskInput struct {
	ClientID    *int64     `json:"clientId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

type TaskUpdateInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	ClearDue    bool       `json:"clearDue"`
}

type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var allowedClientStatuses = map[string]struct{}{
	"active":   {},
	"prospect": {},
	"inactive": {},
}

var allowedPriorities = map[string]struct{}{
	"high":   {},
	"medium": {},
	"low":    {},
}

var allowedTaskStatuses = map[string]struct{}{
	"pending":   {},
	"completed": {},
	"cancelled": {},
}

type dataStore interface {
	ListClients(context.Context, string, string) ([]store.Client, error)
	GetClient(context.Context, string, int64) (store.Client, error)
	CreateClient(context.Context, store.Client) (int64, error)
	UpdateClient(context.Context, string, int64, store.ClientUpdate) error
	DeleteClient(context.Context, string, int64) error
	TouchClient(context.Context, string, int64, bool, bool) error
	CountClientStatuses(context.Context, string) (store.ClientStatusCounts, error)
	CountNeedsAttention(context.Context, string, time.Time) (int, error)
	ListContacts(context.Context, string, int64) ([]store.Contact, error)
	CreateContact(context.Context, store.Contact) (int64, error)
	UpdateContact(context.Context, string, int64, store.ContactUpdate) error
	DeleteContact(context.Context, string, int64) error
	ListNotes(context.Context, string, int64) ([]store.Note, error)
	CreateNote(context.Context, store.Note) (int64, error)
	UpdateNote(context.Context, string, int64, store.NoteUpdate) error
	DeleteNote(context.Context, string, int64) error
	ListTasks(context.Context, string, int64, string) ([]store.Task, error)
	UpcomingTasks(context.Context, string, int64, int) ([]store.Task, error)
	CreateTask(context.Context, store.Task) (int64, error)
	UpdateTask(context.Context, string, int64, store.TaskUpdate) error
	DeleteTask(context.Context, string, int64) error
	CountTasks(context.Context, string, time.Time) (store.TaskCounts, error)
	ListTags(context.Context, string) ([]store.Tag, error)
	CreateTag(context.Context, store.Tag) (int64, error)
	UpdateTag(context.Context, string, int64, *string, *string) error
	DeleteTag(context.Context, string, int64) error
	ListClientTags(context.Context, string, int64) ([]store.ClientTag, error)
	AddClientTag(context.Context, string, int64, int64) error
	RemoveClientTag(context.Context, string, int64, int64) error
	InsertActivity(context.Context, store.ActivityEntry) error
	ListActivity(context.Context, string, int64, int) ([]store.ActivityEntry, error)
	GetRunByDay(context.Context, string, string) (*store.Run, error)
	CreateRun(context.Context, string, string) (*store.Run, bool, error)
	InsertRunItems(context.Context, int64, string, []store.NewRunItem) error
	ListRunItems(context.Context, int64, string) ([]store.RunItem, error)
	ListRunClientIDs(context.Context, int64) (map[int64]bool, error)
	MaxOrdinal(context.Context, int64) (int, error)
	GetRunItem(context.Context, int64, string) (store.RunItem, error)
	SetItemOutcome(context.Context, int64, string, string, string) error
	SetItemContactMade(context.Context, int64, string, bool) error
	ListRunSummaries(context.Context, string, int) ([]store.RunSummary, error)
	UpsertFocusNote(context.Context, string, string, string) (store.FocusNote, error)
	GetFocusNote(context.Context, string, string) (*store.FocusNote, error)
	Capabilities() store.Capabilities
	Ping(ctx context.Context) error
}

type sessionStore interface {
	Save(context.Context, string, session.Data) error
	Lookup(context.Context, string) (session.Data, error)
	Revoke(context.Context, string) error
}

type searchService interface {
	Search(search.Query) search.Response
	IndexClient(search.ClientRecord)
	IndexNote(search.NoteRecord)
	DeleteClient(string)
	DeleteNote(string)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	search   searchService
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions *session.RedisStore, searchSvc *search.Service) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		search:   searchSvc,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ---------------------------------------------------------------------------
// Sessions. Identity is verified upstream; the API only issues and resolves
// bearer tokens for an owner id it is handed.

func (s *Service) Login(ctx context.Context, ownerID, name, email string) (Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		ownerID = util.NewID("owner")
	}

	token := util.NewToken()
	err := s.sessions.Save(ctx, token, session.Data{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
	})
	if err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	return Session{Token: token, OwnerID: ownerID, Name: name, Email: email}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	data, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, OwnerID: data.OwnerID, Name: data.Name, Email: data.Email}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// ---------------------------------------------------------------------------
// Clients

func (s *Service) ListClients(ctx context.Context, sess Session, status string) ([]store.Client, error) {
	if status != "" {
		if _, ok := allowedClientStatuses[status]; !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown client status", map[string]string{"status": status})
		}
	}
	return s.store.ListClients(ctx, sess.OwnerID, status)
}

func (s *Service) GetClient(ctx context.Context, sess Session, clientID int64) (store.Client, error) {
	return s.store.GetClient(ctx, sess.OwnerID, clientID)
}

func (s *Service) CreateClient(ctx context.Context, sess Session, input ClientInput) (store.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return store.Client{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Client name is required", nil)
	}
	if input.Status == "" {
		input.Status = "prospect"
	}
	if _, ok := allowedClientStatuses[input.Status]; !ok {
		return store.Client{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown client status", map[string]string{"status": input.Status})
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}
	if _, ok := allowedPriorities[input.Priority]; !ok {
		return store.Client{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown priority", map[string]string{"priority": input.Priority})
	}

	id, err := s.store.CreateClient(ctx, store.Client{
		OwnerID:     sess.OwnerID,
		Name:        strings.TrimSpace(input.Name),
		Status:      input.Status,
		Priority:    input.Priority,
		Industry:    input.Industry,
		Revenue:     input.Revenue,
		HealthScore: input.HealthScore,
		Bullets:     deck.NormalizeBullets(input.Bullets),
	})
	if err != nil {
		return store.Client{}, err
	}

	s.logActivity(ctx, sess.OwnerID, &id, "client", id, "created", input.Name)

	client, err := s.store.GetClient(ctx, sess.OwnerID, id)
	if err != nil {
		return store.Client{}, err
	}
	s.indexClient(client)
	return client, nil
}

func (s *Service) UpdateClient(ctx context.Context, sess Session, clientID int64, input ClientUpdateInput) (store.Client, error) {
	if input.Status != nil {
		if _, ok := allowedClientStatuses[*input.Status]; !ok {
			return store.Client{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown client status", map[string]string{"status": *input.Status})
		}
	}
	if input.Priority != nil {
		if _, ok := allowedPriorities[*input.Priority]; !ok {
			return store.Client{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown priority", map[string]string{"priority": *input.Priority})
		}
	}
	if input.Bullets != nil {
		normalized := deck.NormalizeBullets(*input.Bullets)
		input.Bullets = &normalized
	}

	err := s.store.UpdateClient(ctx, sess.OwnerID, clientID, store.ClientUpdate{
		Name:        input.Name,
		Status:      input.Status,
		Priority:    input.Priority,
		Industry:    input.Industry,
		Revenue:     input.Revenue,
		HealthScore: input.HealthScore,
		Bullets:     input.Bullets,
	})
	if err != nil {
		return store.Client{}, err
	}

	client, err := s.store.GetClient(ctx, sess.OwnerID, clientID)
	if err != nil {
		return store.Client{}, err
	}
	s.indexClient(client)
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, sess Session, clientID int64) error {
	client, err := s.store.GetClient(ctx, sess.OwnerID, clientID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteClient(ctx, sess.OwnerID, clientID); err != nil {
		return err
	}
	s.logActivity(ctx, sess.OwnerID, nil, "client", clientID, "deleted", client.Name)
	if s.search != nil {
		s.search.DeleteClient(strconv.FormatInt(clientID, 10))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Contacts

func (s *Service) ListContacts(ctx context.Context, sess Session, clientID int64) ([]store.Contact, error) {
	return s.store.ListContacts(ctx, sess.OwnerID, clientID)
}

func (s *Service) CreateContact(ctx context.Context, sess Session, input ContactInput) (int64, error) {
	if strings.TrimSpace(input.Name) == "" {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Contact name is required", nil)
	}
	if input.ClientID == 0 {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Contact requires a client", nil)
	}
	if _, err := s.store.GetClient(ctx, sess.OwnerID, input.ClientID); err != nil {
		return 0, err
	}

	id, err := s.store.CreateContact(ctx, store.Contact{
		OwnerID:   sess.OwnerID,
		ClientID:  input.ClientID,
		Name:      strings.TrimSpace(input.Name),
		Role:      input.Role,
		Email:     input.Email,
		Phone:     input.Phone,
		IsPrimary: input.IsPrimary,
		Notes:     input.Notes,
	})
	if err != nil {
		return 0, err
	}
	s.logActivity(ctx, sess.OwnerID, &input.ClientID, "contact", id, "created", input.Name)
	return id, nil
}

func (s *Service) UpdateContact(ctx context.Context, sess Session, contactID int64, input ContactUpdateInput) error {
	return s.store.UpdateContact(ctx, sess.OwnerID, contactID, store.ContactUpdate{
		Name:      input.Name,
		Role:      input.Role,
		Email:     input.Email,
		Phone:     input.Phone,
		IsPrimary: input.IsPrimary,
		Notes:     input.Notes,
	})
}

func (s *Service) DeleteContact(ctx context.Context, sess Session, contactID int64) error {
	return s.store.DeleteContact(ctx, sess.OwnerID, contactID)
}

// ---------------------------------------------------------------------------
// Notes

func (s *Service) ListNotes(ctx context.Context, sess Session, clientID int64) ([]store.Note, error) {
	return s.store.ListNotes(ctx, sess.OwnerID, clientID)
}

func (s *Service) CreateNote(ctx context.Context, sess Session, input NoteInput) (int64, error) {
	if strings.TrimSpace(input.Content) == "" {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Note content is required", nil)
	}
	if input.ClientID == 0 {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Note requires a client", nil)
	}
	if _, err := s.store.GetClient(ctx, sess.OwnerID, input.ClientID); err != nil {
		return 0, err
	}

	id, err := s.store.CreateNote(ctx, store.Note{
		OwnerID:  sess.OwnerID,
		ClientID: input.ClientID,
		Title:    input.Title,
		Content:  input.Content,
		IsPinned: input.IsPinned,
	})
	if err != nil {
		return 0, err
	}
	s.logActivity(ctx, sess.OwnerID, &input.ClientID, "note", id, "created", input.Title)
	s.indexNote(store.Note{ID: id, OwnerID: sess.OwnerID, ClientID: input.ClientID, Title: input.Title, Content: input.Content})
	return id, nil
}

func (s *Service) UpdateNote(ctx context.Context, sess Session, noteID int64, input NoteUpdateInput) error {
	if err := s.store.UpdateNote(ctx, sess.OwnerID, noteID, store.NoteUpdate{
		Title:    input.Title,
		Content:  input.Content,
		IsPinned: input.IsPinned,
	}); err != nil {
		return err
	}
	if input.Title != nil || input.Content != nil {
		notes, err := s.store.ListNotes(ctx, sess.OwnerID, 0)
		if err == nil {
			for _, n := range notes {
				if n.ID == noteID {
					s.indexNote(n)
					break
				}
			}
		}
	}
	return nil
}

func (s *Service) DeleteNote(ctx context.Context, sess Session, noteID int64) error {
	if err := s.store.DeleteNote(ctx, sess.OwnerID, noteID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteNote(strconv.FormatInt(noteID, 10))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tasks

func (s *Service) ListTasks(ctx context.Context, sess Session, clientID int64, status string) ([]store.Task, error) {
	if status != "" {
		if _, ok := allowedTaskStatuses[status]; !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown task status", map[string]string{"status": status})
		}
	}
	return s.store.ListTasks(ctx, sess.OwnerID, clientID, status)
}

func (s *Service) UpcomingTasks(ctx context.Context, sess Session, clientID int64, limit int) ([]store.Task, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.UpcomingTasks(ctx, sess.OwnerID, clientID, limit)
}

func (s *Service) CreateTask(ctx context.Context, sess Session, input TaskInput) (int64, error) {
	if strings.TrimSpace(input.Title) == "" {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Task title is required", nil)
	}
	if input.Priority == "" {
		input.Priority = "medium"
	}
	if _, ok := allowedPriorities[input.Priority]; !ok {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown priority", map[string]string{"priority": input.Priority})
	}
	if input.ClientID != nil {
		if _, err := s.store.GetClient(ctx, sess.OwnerID, *input.ClientID); err != nil {
			return 0, err
		}
	}

	id, err := s.store.CreateTask(ctx, store.Task{
		OwnerID:     sess.OwnerID,
		ClientID:    input.ClientID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      "pending",
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	})
	if err != nil {
		return 0, err
	}
	s.logActivity(ctx, sess.OwnerID, input.ClientID, "task", id, "created", input.Title)
	return id, nil
}

func (s *Service) UpdateTask(ctx context.Context, sess Session, taskID int64, input TaskUpdateInput) error {
	if input.Status != nil {
		if _, ok := allowedTaskStatuses[*input.Status]; !ok {
			return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown task status", map[string]string{"status": *input.Status})
		}
	}
	if input.Priority != nil {
		if _, ok := allowedPriorities[*input.Priority]; !ok {
			return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown priority", map[string]string{"priority": *input.Priority})
		}
	}
	return s.store.UpdateTask(ctx, sess.OwnerID, taskID, store.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		ClearDue:    input.ClearDue,
	})
}

func (s *Service) DeleteTask(ctx context.Context, sess Session, taskID int64) error {
	return s.store.DeleteTask(ctx, sess.OwnerID, taskID)
}

// ---------------------------------------------------------------------------
// Tags

func (s *Service) ListTags(ctx context.Context, sess Session) ([]store.Tag, error) {
	return s.store.ListTags(ctx, sess.OwnerID)
}

func (s *Service) CreateTag(ctx context.Context, sess Session, input TagInput) (int64, error) {
	if strings.TrimSpace(input.Name) == "" {
		return 0, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Tag name is required", nil)
	}
	if input.Color == "" {
		input.Color = "#6b7280"
	}
	return s.store.CreateTag(ctx, store.Tag{
		OwnerID: sess.OwnerID,
		Name:    strings.TrimSpace(input.Name),
		Color:   input.Color,
	})
}

func (s *Service) UpdateTag(ctx context.Context, sess Session, tagID int64, name, color *string) error {
	return s.store.UpdateTag(ctx, sess.OwnerID, tagID, name, color)
}

func (s *Service) DeleteTag(ctx context.Context, sess Session, tagID int64) error {
	return s.store.DeleteTag(ctx, sess.OwnerID, tagID)
}

func (s *Service) ListClientTags(ctx context.Context, sess Session, clientID int64) ([]store.ClientTag, error) {
	return s.store.ListClientTags(ctx, sess.OwnerID, clientID)
}

func (s *Service) AddClientTag(ctx context.Context, sess Session, clientID, tagID int64) error {
	if _, err := s.store.GetClient(ctx, sess.OwnerID, clientID); err != nil {
		return err
	}
	return s.store.AddClientTag(ctx, sess.OwnerID, clientID, tagID)
}

func (s *Service) RemoveClientTag(ctx context.Context, sess Session, clientID, tagID int64) error {
	return s.store.RemoveClientTag(ctx, sess.OwnerID, clientID, tagID)
}

// ---------------------------------------------------------------------------
// Activity

func (s *Service) ListActivity(ctx context.Context, sess Session, clientID int64, limit int) ([]store.ActivityEntry, error) {
	return s.store.ListActivity(ctx, sess.OwnerID, clientID, limit)
}

// logActivity is best-effort; a failed log line never fails the operation.
func (s *Service) logActivity(ctx context.Context, ownerID string, clientID *int64, entityType string, entityID int64, action, details string) {
	_ = s.store.InsertActivity(ctx, store.ActivityEntry{
		OwnerID:    ownerID,
		ClientID:   clientID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
	})
}

// ---------------------------------------------------------------------------
// Search

func (s *Service) Search(sess Session, text, filterType string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	return s.search.Search(search.Query{
		Text:       text,
		OwnerID:    sess.OwnerID,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Service) indexClient(c store.Client) {
	if s.search == nil {
		return
	}
	s.search.IndexClient(search.ClientRecord{
		ID:       strconv.FormatInt(c.ID, 10),
		OwnerID:  c.OwnerID,
		Name:     c.Name,
		Industry: c.Industry,
		Bullets:  c.Bullets,
		Status:   c.Status,
	})
}

func (s *Service) indexNote(n store.Note) {
	if s.search == nil {
		return
	}
	s.search.IndexNote(search.NoteRecord{
		ID:       strconv.FormatInt(n.ID, 10),
		OwnerID:  n.OwnerID,
		ClientID: n.ClientID,
		Title:    n.Title,
		Content:  n.Content,
	})
}
