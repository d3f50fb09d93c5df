package models

import "time"

// Lifecycle is the per-incident progress state
type Lifecycle string

const (
	LifecycleInvestigating Lifecycle = "investigating"
	LifecycleIdentified    Lifecycle = "identified"
	LifecycleMonitoring    Lifecycle = "monitoring"
	LifecycleResolved      Lifecycle = "resolved"
)

// RawIncident is a single time-stamped record as read from a feed or API,
// before any classification.
type RawIncident struct {
	Title      string
	RawBody    string // may contain HTML
	Timestamp  time.Time
	Updated    time.Time // zero when the source has no separate update time
	Components []string
	State      string // provider-supplied lifecycle, JSON sources only
}

// Incident is the canonical incident record
type Incident struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	HTMLDescription string    `json:"html_description"`
	Status          Lifecycle `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Components      []string  `json:"components"`
}

// Snapshot is the status of one service at one point in time.
// Incidents are ordered newest first; LastIncident is Incidents[0] when set.
type Snapshot struct {
	Status       Status     `json:"status"`
	LastIncident *Incident  `json:"last_incident,omitempty"`
	Incidents    []Incident `json:"incidents"`
	FetchedAt    time.Time  `json:"fetched_at"`
}

// LastIncidentAt returns the timestamp of the last incident, if any
func (s Snapshot) LastIncidentAt() *time.Time {
	if s.LastIncident == nil {
		return nil
	}
	t := s.LastIncident.CreatedAt
	return &t
}
