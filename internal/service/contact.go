package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	linkedInDomain     = "linkedin.com"
)

// ContactCleaner normalizes the contact fields of vendor profiles.
type ContactCleaner struct {
	DefaultRegion string
}

// NewContactCleaner builds a cleaner parsing national numbers in region.
func NewContactCleaner(region string) *ContactCleaner {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactCleaner{DefaultRegion: region}
}

// Email lower-cases the address and converts its domain to ASCII.
// Addresses that do not parse are dropped.
func (c *ContactCleaner) Email(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	local, domain := email[:at], strings.Trim(email[at+1:], ".")
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || !isDomainValid(asciiDomain) {
		return ""
	}
	email = local + "@" + asciiDomain
	if !emailPattern.MatchString(email) {
		return ""
	}
	return email
}

// Phone formats the number as E.164 when it parses, otherwise returns it trimmed.
func (c *ContactCleaner) Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	if normalized := normalizePhone(raw, c.DefaultRegion); normalized != "" {
		return normalized
	}
	return raw
}

// LinkedInURL forces https and strips tracking parameters from linkedin links.
// Links elsewhere are returned trimmed.
func (c *ContactCleaner) LinkedInURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := sanitizeURL(raw)
	if err != nil {
		return raw
	}
	if !hostMatches(u.Hostname(), linkedInDomain) {
		return raw
	}
	stripTracking(u)
	return u.String()
}

func hostMatches(host, domain string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
