package domain

import "time"

type LeaderboardEntry struct {
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	Avatar            string    `json:"avatar,omitempty"`
	Country           string    `json:"country,omitempty"`
	PrimaryLanguages  []string  `json:"primary_languages"`
	OverallScore      float64   `json:"overall_score"`
	OverallLevel      string    `json:"overall_level"`
	OptedIn           bool      `json:"opted_in"`
	ConsentAt         *time.Time `json:"consent_at,omitempty"`
	SubmittedAt       time.Time `json:"submitted_at"`
}
