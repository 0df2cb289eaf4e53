package deck

import (
	"testing"
	"time"
)

func daysAgo(now time.Time, n int) *time.Time {
	t := now.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestPriorityWeight(t *testing.T) {
	cases := []struct {
		priority string
		want     int
	}{
		{"high", 3},
		{"medium", 2},
		{"low", 1},
		{"", 1},
		{"unknown", 1},
	}
	for _, tc := range cases {
		if got := PriorityWeight(tc.priority); got != tc.want {
			t.Errorf("PriorityWeight(%q) = %d, want %d", tc.priority, got, tc.want)
		}
	}
}

func TestStaleness(t *testing.T) {
	now := time.Now()

	if got := Staleness(nil, now); got != NeverTouchedDays {
		t.Errorf("nil last touch = %d, want %d", got, NeverTouchedDays)
	}
	if got := Staleness(daysAgo(now, 3), now); got != 3 {
		t.Errorf("3 days ago = %d, want 3", got)
	}
	// A touch in the future floors at zero rather than going negative.
	future := now.Add(48 * time.Hour)
	if got := Staleness(&future, now); got != 0 {
		t.Errorf("future touch = %d, want 0", got)
	}
	// A very old touch still ranks below never-touched.
	if got := Staleness(daysAgo(now, 5000), now); got >= NeverTouchedDays {
		t.Errorf("ancient touch = %d, must stay below %d", got, NeverTouchedDays)
	}
}

func TestScore(t *testing.T) {
	now := time.Now()
	c := Candidate{Priority: "high", LastTouch: daysAgo(now, 10)}
	if got := Score(c, now); got != 30 {
		t.Errorf("Score = %d, want 30", got)
	}
}

func TestRankOrdersByUrgency(t *testing.T) {
	now := time.Now()
	clients := []Candidate{
		{ID: 1, Name: "Acme", Priority: "low", LastTouch: daysAgo(now, 1)},       // 1
		{ID: 2, Name: "Beta", Priority: "high", LastTouch: nil},                  // 2997
		{ID: 3, Name: "Gamma", Priority: "medium", LastTouch: daysAgo(now, 10)},  // 20
		{ID: 4, Name: "Delta", Priority: "high", LastTouch: daysAgo(now, 30)},    // 90
	}

	ranked := Rank(clients, now)
	wantOrder := []int64{2, 4, 3, 1}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Fatalf("position %d = client %d, want %d", i, ranked[i].ID, want)
		}
	}
}

func TestRankTiebreakByName(t *testing.T) {
	now := time.Now()
	clients := []Candidate{
		{ID: 1, Name: "zeta", Priority: "medium", LastTouch: daysAgo(now, 5)},
		{ID: 2, Name: "Alpha", Priority: "medium", LastTouch: daysAgo(now, 5)},
		{ID: 3, Name: "beta", Priority: "medium", LastTouch: daysAgo(now, 5)},
	}

	ranked := Rank(clients, now)
	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Fatalf("position %d = client %d, want %d (case-insensitive name order)", i, ranked[i].ID, want)
		}
	}
}

func TestRankNeverTouchedOutranksTouchedSameTier(t *testing.T) {
	now := time.Now()
	clients := []Candidate{
		{ID: 1, Name: "Old", Priority: "low", LastTouch: daysAgo(now, 5000)},
		{ID: 2, Name: "Fresh", Priority: "low", LastTouch: nil},
	}

	ranked := Rank(clients, now)
	if ranked[0].ID != 2 {
		t.Error("never-touched client should outrank any touched client in the same tier")
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	clients := []Candidate{
		{ID: 1, Name: "B", Priority: "low"},
		{ID: 2, Name: "A", Priority: "high"},
	}
	Rank(clients, now)
	if clients[0].ID != 1 || clients[1].ID != 2 {
		t.Error("Rank mutated its input slice")
	}
}
