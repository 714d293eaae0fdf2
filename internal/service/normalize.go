package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/merraine/merraine-api/internal/entity"
	"github.com/merraine/merraine-api/internal/pearch"
)

const (
	unknownName     = "Unknown"
	linkedInProfile = "https://linkedin.com/in/"
	resultPrefix    = "result."
	firstElement    = "[0]"
)

// profileAliases lists, per Profile field, the vendor keys tried in order; the
// first non-empty value wins. Keys read the nested profile object unless they
// start with "result.", which reads the search hit. A "[0]" suffix takes the
// first element of a list.
var profileAliases = map[string][]string{
	"id":            {"docid", "linkedin_slug", "result.docid"},
	"first_name":    {"first_name"},
	"last_name":     {"last_name"},
	"name":          {"name", "full_name"},
	"headline":      {"title", "headline"},
	"location":      {"location"},
	"summary":       {"summary"},
	"email":         {"email", "best_business_email", "best_personal_email", "emails[0]", "business_emails[0]", "personal_emails[0]"},
	"phone":         {"phone", "phones[0]", "phone_numbers[0]"},
	"linkedin_slug": {"linkedin_slug"},
	"linkedin_url":  {"linkedin_url"},
	"insights":      {"insights"},
	"picture_url":   {"picture_url"},
}

// Normalizer flattens vendor records into profiles.
type Normalizer struct {
	contacts *ContactCleaner
}

// NewNormalizer builds a normalizer. A nil cleaner uses the default region.
func NewNormalizer(contacts *ContactCleaner) *Normalizer {
	if contacts == nil {
		contacts = NewContactCleaner("")
	}
	return &Normalizer{contacts: contacts}
}

// Result normalizes one search hit. The hit score takes precedence over the
// profile score; both missing leaves Score nil.
func (n *Normalizer) Result(result pearch.SearchResult) entity.Profile {
	raw := result.Profile
	if raw == nil {
		raw = map[string]any{}
	}
	hit := map[string]any{"docid": result.DocID}

	score := result.Score
	if score == nil {
		score = floatValue(raw["score"])
	}

	p := n.Profile(raw, hit)
	p.Score = score
	return p
}

// Results normalizes every hit of a page in order.
func (n *Normalizer) Results(results []pearch.SearchResult) []entity.Profile {
	out := make([]entity.Profile, 0, len(results))
	for _, r := range results {
		out = append(out, n.Result(r))
	}
	return out
}

// Profile normalizes a bare vendor profile object. hit may be nil.
func (n *Normalizer) Profile(raw, hit map[string]any) entity.Profile {
	get := func(field string) string { return firstString(raw, hit, profileAliases[field]) }

	name := strings.TrimSpace(strings.Join(nonEmpty(get("first_name"), get("last_name")), " "))
	if name == "" {
		name = get("name")
	}
	if name == "" {
		name = unknownName
	}

	var linkedIn string
	if slug := get("linkedin_slug"); slug != "" {
		linkedIn = linkedInProfile + slug
	} else {
		linkedIn = n.contacts.LinkedInURL(get("linkedin_url"))
	}

	p := entity.Profile{
		ID:          get("id"),
		Name:        name,
		Headline:    get("headline"),
		Location:    get("location"),
		Summary:     get("summary"),
		Skills:      stringList(raw["skills"]),
		Email:       n.contacts.Email(get("email")),
		Phone:       n.contacts.Phone(get("phone")),
		LinkedInURL: linkedIn,
		Score:       floatValue(raw["score"]),
		Insights:    get("insights"),
		Experience:  decodeList[entity.Experience](raw["experience"]),
		Education:   decodeList[entity.Education](raw["education"]),
		PictureURL:  get("picture_url"),
	}
	return p
}

// Contact extracts the cleaned email and phone from an enrichment payload,
// which may carry the fields at the top level or under "profile".
func (n *Normalizer) Contact(payload map[string]any) (email, phone string) {
	sources := []map[string]any{payload}
	if nested, ok := payload["profile"].(map[string]any); ok {
		sources = append(sources, nested)
	}
	for _, src := range sources {
		if email == "" {
			email = n.contacts.Email(firstString(src, nil, profileAliases["email"]))
		}
		if phone == "" {
			phone = n.contacts.Phone(firstString(src, nil, profileAliases["phone"]))
		}
	}
	return email, phone
}

func firstString(raw, hit map[string]any, keys []string) string {
	for _, key := range keys {
		src := raw
		if strings.HasPrefix(key, resultPrefix) {
			src = hit
			key = strings.TrimPrefix(key, resultPrefix)
		}
		if src == nil {
			continue
		}

		var value any
		if strings.HasSuffix(key, firstElement) {
			list, ok := src[strings.TrimSuffix(key, firstElement)].([]any)
			if !ok || len(list) == 0 {
				continue
			}
			value = list[0]
		} else {
			value = src[key]
		}

		if s := stringValue(value); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func floatValue(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := stringValue(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeList returns an empty list when the input cannot be decoded.
func decodeList[T any](input any) []T {
	out := []T{}
	if input == nil {
		return out
	}
	var decoded []T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return out
	}
	if err := decoder.Decode(input); err != nil || decoded == nil {
		return out
	}
	return decoded
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
