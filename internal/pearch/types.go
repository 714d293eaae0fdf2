package pearch

// CustomFilters narrows a search on the vendor side.
type CustomFilters struct {
	Locations                 []string `json:"locations,omitempty" mapstructure:"locations"`
	Keywords                  []string `json:"keywords,omitempty" mapstructure:"keywords"`
	Titles                    []string `json:"titles,omitempty" mapstructure:"titles"`
	Industries                []string `json:"industries,omitempty" mapstructure:"industries"`
	Companies                 []string `json:"companies,omitempty" mapstructure:"companies"`
	MinTotalExperienceYears   *int     `json:"min_total_experience_years,omitempty" mapstructure:"min_total_experience_years"`
	MaxTotalExperienceYears   *int     `json:"max_total_experience_years,omitempty" mapstructure:"max_total_experience_years"`
	MinCurrentExperienceYears *int     `json:"min_current_experience_years,omitempty" mapstructure:"min_current_experience_years"`
	MaxCurrentExperienceYears *int     `json:"max_current_experience_years,omitempty" mapstructure:"max_current_experience_years"`
	Universities              []string `json:"universities,omitempty" mapstructure:"universities"`
	Degrees                   []string `json:"degrees,omitempty" mapstructure:"degrees"`
	Languages                 []string `json:"languages,omitempty" mapstructure:"languages"`
	HasStartupExperience      *bool    `json:"has_startup_experience,omitempty" mapstructure:"has_startup_experience"`
	HasSaaSExperience         *bool    `json:"has_saas_experience,omitempty" mapstructure:"has_saas_experience"`
	HasB2BExperience          *bool    `json:"has_b2b_experience,omitempty" mapstructure:"has_b2b_experience"`
	HasB2CExperience          *bool    `json:"has_b2c_experience,omitempty" mapstructure:"has_b2c_experience"`
}

// SearchParams is the request body of POST /v2/search.
type SearchParams struct {
	Query                     string         `json:"query"`
	Type                      string         `json:"type,omitempty"`
	Insights                  bool           `json:"insights,omitempty"`
	ProfileScoring            bool           `json:"profile_scoring,omitempty"`
	HighFreshness             bool           `json:"high_freshness,omitempty"`
	RevealEmails              bool           `json:"reveal_emails,omitempty"`
	RevealPhones              bool           `json:"reveal_phones,omitempty"`
	ThreadID                  string         `json:"thread_id,omitempty"`
	Limit                     int            `json:"limit,omitempty"`
	CustomFilters             *CustomFilters `json:"custom_filters,omitempty"`
	Offset                    int            `json:"offset,omitempty"`
	DocIDBlacklist            []string       `json:"docid_blacklist,omitempty"`
	StrictFilters             bool           `json:"strict_filters,omitempty"`
	FilterOutNoEmails         bool           `json:"filter_out_no_emails,omitempty"`
	FilterOutNoPhones         bool           `json:"filter_out_no_phones,omitempty"`
	FilterOutNoPhonesOrEmails bool           `json:"filter_out_no_phones_or_emails,omitempty"`
}

// SearchResult is one raw hit. Score sits on the result, not inside the profile.
type SearchResult struct {
	DocID   string         `json:"docid"`
	Score   *float64       `json:"score,omitempty"`
	Profile map[string]any `json:"profile"`
}

// SearchResponse is the raw vendor search payload.
type SearchResponse struct {
	SearchResults []SearchResult `json:"search_results"`
	ThreadID      string         `json:"thread_id,omitempty"`
	TotalCount    *int           `json:"total_count,omitempty"`
	CreditsUsed   *int           `json:"credits_used,omitempty"`
}

// EnrichParams selects a profile and the paid reveal options.
type EnrichParams struct {
	ID            string
	HighFreshness bool
	RevealEmails  bool
	RevealPhones  bool
	WithProfile   bool
}

// Job is a posting indexed by the vendor for matching.
type Job struct {
	JobID          string `json:"job_id"`
	JobDescription string `json:"job_description"`
}

// JobList is the payload of GET /v1/list_jobs.
type JobList struct {
	Jobs []Job `json:"jobs"`
}

// MatchedJob is a job returned for a profile.
type MatchedJob struct {
	JobID          string   `json:"job_id"`
	JobDescription string   `json:"job_description"`
	Score          *float64 `json:"score,omitempty"`
	Relevance      string   `json:"relevance,omitempty"`
}

// MatchResponse is the payload of POST /v1/find_matching_jobs.
type MatchResponse struct {
	Jobs []MatchedJob `json:"jobs"`
}
