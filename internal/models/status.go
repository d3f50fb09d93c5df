package models

import "time"

// Status is the canonical state of a monitored service.
type Status string

const (
	StatusOperational Status = "operational"
	StatusDegraded    Status = "degraded"
	StatusIncident    Status = "incident"
	StatusOutage      Status = "outage"
	StatusMaintenance Status = "maintenance"
	StatusUnknown     Status = "unknown"
)

// AllStatuses lists every canonical status in display order
var AllStatuses = []Status{
	StatusOperational,
	StatusDegraded,
	StatusIncident,
	StatusOutage,
	StatusMaintenance,
	StatusUnknown,
}

// Valid reports whether s is one of the canonical statuses
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Active reports whether the status describes an ongoing problem
func (s Status) Active() bool {
	return s == StatusIncident || s == StatusOutage || s == StatusDegraded
}

// Severity orders statuses for sorting; higher is worse.
func (s Status) Severity() int {
	switch s {
	case StatusOperational:
		return 0
	case StatusMaintenance:
		return 1
	case StatusDegraded:
		return 2
	case StatusIncident:
		return 3
	case StatusOutage:
		return 4
	default:
		return -1
	}
}

// ParseStatus converts a stored string into a Status, falling back to unknown
func ParseStatus(s string) Status {
	st := Status(s)
	if st.Valid() {
		return st
	}
	return StatusUnknown
}

// Display is the presentation lookup for a status badge
type Display struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Display returns the badge color class and label for s
func (s Status) Display() Display {
	switch s {
	case StatusOperational:
		return Display{Color: "bg-green-100 text-green-800", Label: "Operational"}
	case StatusDegraded:
		return Display{Color: "bg-orange-100 text-orange-800", Label: "Degraded"}
	case StatusIncident:
		return Display{Color: "bg-red-100 text-red-800", Label: "Incident"}
	case StatusOutage:
		return Display{Color: "bg-red-100 text-red-800", Label: "Major Outage"}
	case StatusMaintenance:
		return Display{Color: "bg-blue-100 text-blue-800", Label: "Maintenance"}
	default:
		return Display{Color: "bg-gray-100 text-gray-800", Label: "Status Unavailable"}
	}
}

// StatusRow is the persisted status of one service, keyed by slug
type StatusRow struct {
	ServiceSlug  string     `json:"service_slug" db:"service_slug"`
	Status       Status     `json:"status" db:"status"`
	LastIncident *time.Time `json:"last_incident,omitempty" db:"last_incident"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// StatusChange is emitted during a sync run when a previously persisted
// status differs from the freshly computed one.
type StatusChange struct {
	ServiceSlug string `json:"service_slug"`
	ServiceName string `json:"service_name"`
	OldStatus   Status `json:"old_status"`
	NewStatus   Status `json:"new_status"`
}
