// Package search provides client and note lookup, served by Meilisearch when
// configured and by Postgres pattern matching otherwise.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultClient ResultType = "client"
	ResultNote   ResultType = "note"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	ClientID int64      `json:"clientId"`
}

// Query describes a search request. OwnerID is mandatory; results never
// cross owners.
type Query struct {
	Text       string
	OwnerID    string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ClientRecord is the data we index for a client.
type ClientRecord struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Bullets  string `json:"bullets"`
	Status   string `json:"status"`
}

// NoteRecord is the data we index for a note.
type NoteRecord struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	ClientID int64  `json:"clientId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}
