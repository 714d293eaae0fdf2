package tiering

import (
	"testing"

	"github.com/merraine/merraine-api/internal/entity"
)

func score(v float64) *float64 { return &v }

func TestScoreToPercentage(t *testing.T) {
	tests := map[string]struct {
		in   *float64
		want int
	}{
		"missing":          {in: nil, want: NoScore},
		"decimal":          {in: score(0.95), want: 95},
		"decimal rounding": {in: score(0.875), want: 88},
		"zero":             {in: score(0), want: 0},
		"four scale max":   {in: score(4), want: 100},
		"four scale mid":   {in: score(3), want: 75},
		"percentage":       {in: score(72.4), want: 72},
		"above hundred":    {in: score(250), want: 100},
		"one":              {in: score(1), want: 100},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ScoreToPercentage(tt.in); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := map[int]string{
		100:     Excellent,
		95:      Excellent,
		90:      Excellent,
		89:      Good,
		70:      Good,
		69:      Fair,
		50:      Fair,
		49:      Below,
		NoScore: Below,
		-5000:   Below,
		150:     Below,
	}
	for percent, want := range tests {
		if got := TierFor(percent); got.Name != want {
			t.Fatalf("percent %d: expected %s, got %s", percent, want, got.Name)
		}
	}

	below := TierFor(NoScore)
	if below.Label != "Search Results" || below.Color != "#0A84FF" {
		t.Fatalf("unexpected below tier: %+v", below)
	}
	if TierFor(95).Color != "#30D158" || TierFor(60).Color != "#FF9500" {
		t.Fatalf("unexpected tier colors")
	}
}

func TestGroupByTier(t *testing.T) {
	profiles := []entity.Profile{
		{ID: "a", Score: score(0.95)},
		{ID: "b", Score: score(4)},
		{ID: "c", Score: score(0.75)},
		{ID: "d", Score: score(0.55)},
		{ID: "e"},
		{ID: "f", Score: score(0.1)},
	}

	groups := GroupByTier(profiles)
	counts := TierCounts(groups)
	if counts != (Counts{Excellent: 2, Good: 1, Fair: 1, Below: 2}) {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if TotalCount(groups) != len(profiles) {
		t.Fatalf("expected total %d, got %d", len(profiles), TotalCount(groups))
	}
	if groups.Excellent[0].ID != "a" || groups.Excellent[1].ID != "b" {
		t.Fatalf("expected input order within a tier, got %+v", groups.Excellent)
	}

	empty := GroupByTier(nil)
	if empty.Below == nil || TotalCount(empty) != 0 {
		t.Fatalf("expected empty non-nil groups")
	}
}

func TestHasVariedScores(t *testing.T) {
	if HasVariedScores([]entity.Profile{{Score: score(4)}, {Score: score(4)}, {}}) {
		t.Fatalf("identical scores are not varied")
	}
	if HasVariedScores([]entity.Profile{{Score: score(0.5)}, {}}) {
		t.Fatalf("a single scored profile is not varied")
	}
	if !HasVariedScores([]entity.Profile{{Score: score(0.5)}, {Score: score(0.7)}}) {
		t.Fatalf("expected distinct scores to be varied")
	}
}

func TestSortProfiles(t *testing.T) {
	profiles := []entity.Profile{
		{ID: "1", Name: "bob", Location: "Zurich", Score: score(0.5)},
		{ID: "2", Name: "Alice", Location: "amsterdam", Score: score(0.9)},
		{ID: "3", Name: "carol", Location: "Berlin"},
		{ID: "4", Name: "alice", Location: "Zurich", Score: score(0.9)},
	}

	byName := SortProfiles(profiles, SortConfig{Column: ColumnName, Direction: Asc})
	if ids(byName) != "2413" {
		t.Fatalf("unexpected name order: %s", ids(byName))
	}

	byScore := SortProfiles(profiles, SortConfig{Column: ColumnScore, Direction: Desc})
	if ids(byScore) != "2413" {
		t.Fatalf("unexpected score order: %s", ids(byScore))
	}

	byLocation := SortProfiles(profiles, SortConfig{Column: ColumnLocation, Direction: Asc})
	if ids(byLocation) != "2314" {
		t.Fatalf("unexpected location order: %s", ids(byLocation))
	}

	if ids(profiles) != "1234" {
		t.Fatalf("input must not be mutated, got %s", ids(profiles))
	}

	unknown := SortProfiles(profiles, SortConfig{Column: "email", Direction: Asc})
	if ids(unknown) != "1234" {
		t.Fatalf("unknown column must keep order, got %s", ids(unknown))
	}
}

func TestSortConfigValid(t *testing.T) {
	if !(SortConfig{Column: ColumnScore, Direction: Desc}).Valid() {
		t.Fatalf("expected valid config")
	}
	if (SortConfig{Column: "email", Direction: Asc}).Valid() || (SortConfig{Column: ColumnName, Direction: "up"}).Valid() {
		t.Fatalf("expected invalid configs")
	}
}

func TestDeduplicate(t *testing.T) {
	profiles := []entity.Profile{
		{ID: "a", Name: "first", Score: score(0.4)},
		{ID: "b", Score: score(0.6)},
		{ID: "a", Name: "better", Score: score(0.8)},
		{ID: "a", Name: "worse", Score: score(0.1)},
		{Name: "No Id", Email: "x@y.z"},
		{Name: "no id", Email: "X@Y.Z", Score: score(0.3)},
	}

	out := Deduplicate(profiles)
	if len(out) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(out))
	}
	if out[0].ID != "a" || out[0].Name != "better" {
		t.Fatalf("expected highest score to win in first position, got %+v", out[0])
	}
	if out[1].ID != "b" {
		t.Fatalf("expected first-appearance order, got %+v", out[1])
	}
	if out[2].Score == nil || *out[2].Score != 0.3 {
		t.Fatalf("expected fallback-key duplicates to merge, got %+v", out[2])
	}
}

func TestProfileKey(t *testing.T) {
	key := ProfileKey(entity.Profile{Name: "Jane  Doe", Headline: "Staff Engineer"})
	if key != "jane-doe-staff-engineer" {
		t.Fatalf("unexpected key %q", key)
	}
	if ProfileKey(entity.Profile{}) != "unknown" {
		t.Fatalf("expected unknown key for empty profile")
	}
}

func ids(profiles []entity.Profile) string {
	out := ""
	for _, p := range profiles {
		out += p.ID
	}
	return out
}
