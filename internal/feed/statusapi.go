package feed

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

type statusDocument struct {
	Status *struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
	// status.io pages nest the overall state under result
	Result *struct {
		StatusOverall *struct {
			Status string `json:"status"`
		} `json:"status_overall"`
	} `json:"result"`
}

type component struct {
	Name string `json:"name"`
}

type incidentUpdate struct {
	Body               string      `json:"body"`
	Status             string      `json:"status"`
	CreatedAt          string      `json:"created_at"`
	AffectedComponents []component `json:"affected_components"`
}

type apiIncident struct {
	Name            string           `json:"name"`
	Title           string           `json:"title"`
	Body            string           `json:"body"`
	Status          string           `json:"status"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
	StartedAt       string           `json:"started_at"`
	IncidentUpdates []incidentUpdate `json:"incident_updates"`
	Components      []component      `json:"components"`
}

type incidentsDocument struct {
	Incidents []apiIncident `json:"incidents"`
}

// ParseIndicator returns the provider's own status claim from a
// status.json or summary.json document as "indicator description".
func ParseIndicator(data []byte) (string, error) {
	var doc statusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", apperrors.ParseError{Format: "status json", Err: err}
	}
	if doc.Status != nil {
		return strings.TrimSpace(doc.Status.Indicator + " " + doc.Status.Description), nil
	}
	if doc.Result != nil && doc.Result.StatusOverall != nil {
		return strings.TrimSpace(doc.Result.StatusOverall.Status), nil
	}
	return "", nil
}

// ParseIncidents reads an incidents.json document. Incidents without any
// parseable timestamp are dropped.
func ParseIncidents(data []byte) ([]models.RawIncident, error) {
	var doc incidentsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.ParseError{Format: "incidents json", Err: err}
	}

	records := make([]models.RawIncident, 0, len(doc.Incidents))
	for _, inc := range doc.Incidents {
		created, ok := firstTime(inc.CreatedAt, inc.UpdatedAt, inc.StartedAt)
		if !ok {
			continue
		}
		updated, ok := firstTime(inc.UpdatedAt)
		if !ok {
			updated = created
		}

		latest := latestUpdate(inc.IncidentUpdates)

		body := inc.Body
		if latest != nil && latest.Body != "" {
			body = latest.Body
		}

		names := componentNames(inc.Components)
		if len(names) == 0 && latest != nil {
			names = componentNames(latest.AffectedComponents)
		}

		title := inc.Name
		if title == "" {
			title = inc.Title
		}
		if title == "" {
			title = "Unknown Incident"
		}

		records = append(records, models.RawIncident{
			Title:      strings.TrimSpace(title),
			RawBody:    body,
			Timestamp:  created,
			Updated:    updated,
			Components: names,
			State:      strings.ToLower(strings.TrimSpace(inc.Status)),
		})
	}
	return records, nil
}

// latestUpdate picks the newest update by created_at. Providers list
// updates newest first, so the first entry wins ties and unparseable dates.
func latestUpdate(updates []incidentUpdate) *incidentUpdate {
	if len(updates) == 0 {
		return nil
	}
	best := &updates[0]
	bestAt, _ := parseTime(best.CreatedAt)
	for i := 1; i < len(updates); i++ {
		at, ok := parseTime(updates[i].CreatedAt)
		if ok && at.After(bestAt) {
			best, bestAt = &updates[i], at
		}
	}
	return best
}

func componentNames(cs []component) []string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		if n := strings.TrimSpace(c.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func firstTime(values ...string) (time.Time, bool) {
	for _, v := range values {
		if t, ok := parseTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 MST",
	time.RFC1123Z,
	time.RFC1123,
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
