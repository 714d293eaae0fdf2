package entity

// Experience is one position held by a candidate.
type Experience struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one degree or school attended by a candidate.
type Education struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
}

// Profile is the flat candidate record served to clients.
// Score is nil when the vendor did not score the candidate.
type Profile struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	Headline    string       `json:"headline"`
	Location    string       `json:"location"`
	Summary     string       `json:"summary"`
	Skills      []string     `json:"skills"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	LinkedInURL string       `json:"linkedin_url"`
	Score       *float64     `json:"score,omitempty"`
	Insights    string       `json:"insights"`
	Experience  []Experience `json:"experience"`
	Education   []Education  `json:"education"`
	PictureURL  string       `json:"picture_url"`
}
