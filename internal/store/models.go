package store

import "time"

type Client struct {
	ID             int64
	OwnerID        string
	Name           string
	Status         string
	Priority       string
	Industry       string
	Revenue        string
	HealthScore    int
	Bullets        string
	LastContactAt  *time.Time
	LastReviewedAt *time.Time
	LastTouchedAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClientUpdate carries a partial edit; nil fields are left untouched.
type ClientUpdate struct {
	Name        *string
	Status      *string
	Priority    *string
	Industry    *string
	Revenue     *string
	HealthScore *int
	Bullets     *string
}

type Contact struct {
	ID        int64
	OwnerID   string
	ClientID  int64
	Name      string
	Role      string
	Email     string
	Phone     string
	IsPrimary bool
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContactUpdate struct {
	Name      *string
	Role      *string
	Email     *string
	Phone     *string
	IsPrimary *bool
	Notes     *string
}

type Note struct {
	ID        int64
	OwnerID   string
	ClientID  int64
	Title     string
	Content   string
	IsPinned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NoteUpdate struct {
	Title    *string
	Content  *string
	IsPinned *bool
}

type Task struct {
	ID          int64
	OwnerID     string
	ClientID    *int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
}

type Tag struct {
	ID        int64
	OwnerID   string
	Name      string
	Color     string
	CreatedAt time.Time
}

// ClientTag is a tag assignment joined with the tag itself.
type ClientTag struct {
	ID       int64
	TagID    int64
	TagName  string
	TagColor string
}

type ActivityEntry struct {
	ID         int64
	OwnerID    string
	ClientID   *int64
	EntityType string
	EntityID   int64
	Action     string
	Details    string
	CreatedAt  time.Time
}

// Run is one owner's review queue for one business day.
type Run struct {
	ID        int64
	OwnerID   string
	DayKey    string
	CreatedAt time.Time
}

// NewRunItem is the insert shape for a line-item.
type NewRunItem struct {
	ClientID int64
	Ordinal  int
}

// RunItem is a line-item joined with the live client row it points at.
// Outcome is "" while pending.
type RunItem struct {
	ID          int64
	RunID       int64
	OwnerID     string
	ClientID    int64
	Ordinal     int
	Outcome     string
	QuickNote   string
	ReviewedAt  *time.Time
	ContactMade bool

	ClientName          string
	ClientStatus        string
	ClientPriority      string
	ClientIndustry      string
	ClientHealthScore   int
	ClientBullets       string
	ClientLastContactAt *time.Time
	ClientLastTouchedAt *time.Time
}

// RunSummary is the per-day aggregate used for history and the streak walk.
type RunSummary struct {
	ID        int64
	DayKey    string
	Total     int
	Reviewed  int
	Flagged   int
	Pending   int
	Complete  bool
	CreatedAt time.Time
}

type FocusNote struct {
	OwnerID   string
	DayKey    string
	Body      string
	UpdatedAt time.Time
}

type ClientStatusCounts struct {
	Total              int
	Active             int
	Prospect           int
	Inactive           int
	HighPriorityActive int
}

type TaskCounts struct {
	Pending int
	Overdue int
}

// Capabilities records optional schema surface probed once at startup.
// Older databases predate the contact_made column on run_items; reads fall
// back to a query that omits it and defaults the flag to false.
type Capabilities struct {
	RunItemContactMade bool
}
