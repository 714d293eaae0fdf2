package tiering

import (
	"math"
	"sort"
	"strings"

	"github.com/merraine/merraine-api/internal/entity"
)

// Tier names.
const (
	Excellent = "excellent"
	Good      = "good"
	Fair      = "fair"
	Below     = "below"
)

// NoScore is the percentage reported for unscored profiles.
const NoScore = -1

// TierInfo describes one score band. Bounds are inclusive percentages.
type TierInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	MinScore int    `json:"min_score"`
	MaxScore int    `json:"max_score"`
	Color    string `json:"color"`
}

// Tiers is ordered from best to worst. Below also holds unscored profiles.
var Tiers = []TierInfo{
	{Name: Excellent, Label: "Excellent Match", MinScore: 90, MaxScore: 100, Color: "#30D158"},
	{Name: Good, Label: "Good Match", MinScore: 70, MaxScore: 89, Color: "#0A84FF"},
	{Name: Fair, Label: "Fair Match", MinScore: 50, MaxScore: 69, Color: "#FF9500"},
	{Name: Below, Label: "Search Results", MinScore: -999, MaxScore: 49, Color: "#0A84FF"},
}

// Groups holds profiles bucketed by tier in input order.
type Groups struct {
	Excellent []entity.Profile `json:"excellent"`
	Good      []entity.Profile `json:"good"`
	Fair      []entity.Profile `json:"fair"`
	Below     []entity.Profile `json:"below"`
}

// Counts is the per-tier size of a Groups value.
type Counts struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Below     int `json:"below"`
}

// ScoreToPercentage maps the vendor score onto 0-100.
// Scores on the 0-4 scale saturate: the vendor currently returns 4 for every
// match, which yields 100 for all rows. HasVariedScores exposes that case.
func ScoreToPercentage(score *float64) int {
	if score == nil {
		return NoScore
	}
	s := *score
	switch {
	case s > 100:
		return 100
	case s > 4:
		return round(s)
	case s > 1:
		return round(s / 4 * 100)
	default:
		return round(s * 100)
	}
}

// TierFor returns the band containing percent, falling back to Below.
func TierFor(percent int) TierInfo {
	for _, tier := range Tiers {
		if percent >= tier.MinScore && percent <= tier.MaxScore {
			return tier
		}
	}
	return Tiers[len(Tiers)-1]
}

// GroupByTier buckets every profile by its score band.
func GroupByTier(profiles []entity.Profile) Groups {
	groups := Groups{
		Excellent: []entity.Profile{},
		Good:      []entity.Profile{},
		Fair:      []entity.Profile{},
		Below:     []entity.Profile{},
	}
	for _, p := range profiles {
		switch TierFor(ScoreToPercentage(p.Score)).Name {
		case Excellent:
			groups.Excellent = append(groups.Excellent, p)
		case Good:
			groups.Good = append(groups.Good, p)
		case Fair:
			groups.Fair = append(groups.Fair, p)
		default:
			groups.Below = append(groups.Below, p)
		}
	}
	return groups
}

// TierCounts returns the size of each group.
func TierCounts(groups Groups) Counts {
	return Counts{
		Excellent: len(groups.Excellent),
		Good:      len(groups.Good),
		Fair:      len(groups.Fair),
		Below:     len(groups.Below),
	}
}

// TotalCount returns the number of profiles across all groups.
func TotalCount(groups Groups) int {
	return len(groups.Excellent) + len(groups.Good) + len(groups.Fair) + len(groups.Below)
}

// HasVariedScores reports whether at least two scored profiles have distinct raw scores.
func HasVariedScores(profiles []entity.Profile) bool {
	seen := map[float64]struct{}{}
	scored := 0
	for _, p := range profiles {
		if p.Score == nil {
			continue
		}
		scored++
		seen[*p.Score] = struct{}{}
	}
	return scored >= 2 && len(seen) > 1
}

// Sort columns and directions.
const (
	ColumnName     = "name"
	ColumnScore    = "score"
	ColumnLocation = "location"

	Asc  = "asc"
	Desc = "desc"
)

// SortConfig selects the column and direction for SortProfiles.
type SortConfig struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Valid reports whether the column and direction are known.
func (c SortConfig) Valid() bool {
	switch c.Column {
	case ColumnName, ColumnScore, ColumnLocation:
	default:
		return false
	}
	return c.Direction == Asc || c.Direction == Desc
}

// SortProfiles returns a sorted copy. Equal keys keep their input order.
// Unknown columns return the copy unchanged.
func SortProfiles(profiles []entity.Profile, cfg SortConfig) []entity.Profile {
	out := make([]entity.Profile, len(profiles))
	copy(out, profiles)

	var less func(a, b entity.Profile) bool
	switch cfg.Column {
	case ColumnName:
		less = func(a, b entity.Profile) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case ColumnLocation:
		less = func(a, b entity.Profile) bool { return strings.ToLower(a.Location) < strings.ToLower(b.Location) }
	case ColumnScore:
		less = func(a, b entity.Profile) bool { return ScoreToPercentage(a.Score) < ScoreToPercentage(b.Score) }
	default:
		return out
	}

	desc := cfg.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Deduplicate keeps one profile per key, the highest scored one, in order of
// first appearance. A missing score counts as zero.
func Deduplicate(profiles []entity.Profile) []entity.Profile {
	index := make(map[string]int, len(profiles))
	out := make([]entity.Profile, 0, len(profiles))
	for _, p := range profiles {
		key := p.ID
		if key == "" {
			key = ProfileKey(p)
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		if scoreOrZero(p.Score) > scoreOrZero(out[i].Score) {
			out[i] = p
		}
	}
	return out
}

// ProfileKey builds a deterministic key for profiles without an id.
func ProfileKey(p entity.Profile) string {
	name := p.Name
	if name == "" {
		name = "unknown"
	}
	parts := make([]string, 0, 5)
	for _, part := range []string{name, p.LinkedInURL, p.Email, p.Headline, p.Location} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(strings.Join(parts, "-"))), "-")
}

func scoreOrZero(score *float64) float64 {
	if score == nil {
		return 0
	}
	return *score
}

// round matches half-up rounding on negative inputs too.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
