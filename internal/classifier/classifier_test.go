package classifier

import (
	"testing"
	"time"

	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

var now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func incidentAt(age time.Duration, title, description string) *models.Incident {
	return &models.Incident{
		Title:       title,
		Description: description,
		CreatedAt:   now.Add(-age),
	}
}

func TestClassifier_ClassifyFeed(t *testing.T) {
	c := New(0)

	tests := []struct {
		name     string
		last     *models.Incident
		expected models.Status
	}{
		{
			name:     "No incidents",
			last:     nil,
			expected: models.StatusOperational,
		},
		{
			name:     "Old critical outage expires",
			last:     incidentAt(30*time.Hour, "CRITICAL OUTAGE", "All regions are down"),
			expected: models.StatusOperational,
		},
		{
			name:     "Exactly at the window edge still counts",
			last:     incidentAt(24*time.Hour, "Major outage", ""),
			expected: models.StatusOutage,
		},
		{
			name:     "Completed maintenance",
			last:     incidentAt(time.Hour, "Scheduled maintenance", "The maintenance has been resolved"),
			expected: models.StatusOperational,
		},
		{
			name:     "Active maintenance",
			last:     incidentAt(time.Hour, "Planned database upgrade", "Work is in progress"),
			expected: models.StatusMaintenance,
		},
		{
			name:     "Outage under investigation",
			last:     incidentAt(time.Hour, "API outage", "We are investigating the issue"),
			expected: models.StatusOutage,
		},
		{
			name:     "Degraded performance",
			last:     incidentAt(2*time.Hour, "Degraded performance", "Some requests are slow"),
			expected: models.StatusDegraded,
		},
		{
			name:     "Incident being monitored",
			last:     incidentAt(2*time.Hour, "Elevated errors", "A fix has been implemented and we are monitoring the results"),
			expected: models.StatusIncident,
		},
		{
			name:     "Resolved outage",
			last:     incidentAt(3*time.Hour, "Partial outage", "This incident has been resolved"),
			expected: models.StatusOperational,
		},
		{
			name:     "Resolution keyword only",
			last:     incidentAt(3*time.Hour, "Login issue", "Service restored"),
			expected: models.StatusOperational,
		},
		{
			name:     "No keyword defaults conservatively",
			last:     incidentAt(3*time.Hour, "Elevated latency", "Some users see errors"),
			expected: models.StatusDegraded,
		},
		{
			name:     "Empty content within window",
			last:     incidentAt(time.Minute, "", ""),
			expected: models.StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ClassifyFeed(tt.last, now); got != tt.expected {
				t.Errorf("ClassifyFeed() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestClassifier_ClassifyText_Priority(t *testing.T) {
	c := New(0)

	// maintenance is tested before outage words
	if got := c.ClassifyText("scheduled maintenance may cause downtime"); got != models.StatusMaintenance {
		t.Errorf("expected maintenance, got %s", got)
	}
	if got := c.ClassifyText("Scheduled Maintenance resolved"); got != models.StatusOperational {
		t.Errorf("expected operational, got %s", got)
	}
	if got := c.ClassifyText("outage investigating"); got == models.StatusOperational {
		t.Error("outage without resolution must not be operational")
	}
}

func TestClassifier_InvalidUTF8(t *testing.T) {
	c := New(0)
	last := incidentAt(time.Hour, "Outage \xff\xfe", "bad \xc3 bytes")

	if got := c.ClassifyFeed(last, now); got != models.StatusOutage {
		t.Errorf("expected outage, got %s", got)
	}
	if got := c.Lifecycle("\xff"); got != models.LifecycleInvestigating {
		t.Errorf("expected investigating, got %s", got)
	}
}

func TestClassifier_CustomWindow(t *testing.T) {
	c := New(time.Hour)
	if c.Window() != time.Hour {
		t.Fatalf("window = %v", c.Window())
	}
	if got := c.ClassifyFeed(incidentAt(2*time.Hour, "outage", ""), now); got != models.StatusOperational {
		t.Errorf("expected operational outside custom window, got %s", got)
	}
}

func TestClassifier_Lifecycle(t *testing.T) {
	c := New(0)

	tests := []struct {
		text     string
		expected models.Lifecycle
	}{
		{"This incident has been resolved. We were monitoring", models.LifecycleResolved},
		{"We are monitoring the fix after the issue was identified", models.LifecycleMonitoring},
		{"The issue has been identified", models.LifecycleIdentified},
		{"We are looking into reports", models.LifecycleInvestigating},
		{"", models.LifecycleInvestigating},
	}

	for _, tt := range tests {
		if got := c.Lifecycle(tt.text); got != tt.expected {
			t.Errorf("Lifecycle(%q) = %s, want %s", tt.text, got, tt.expected)
		}
	}
}

func TestClassifier_ProviderLifecycle(t *testing.T) {
	c := New(0)

	if got := c.ProviderLifecycle("Identified", "resolved"); got != models.LifecycleIdentified {
		t.Errorf("provider state should win, got %s", got)
	}
	if got := c.ProviderLifecycle("postmortem", ""); got != models.LifecycleResolved {
		t.Errorf("postmortem should map to resolved, got %s", got)
	}
	if got := c.ProviderLifecycle("", "we are monitoring"); got != models.LifecycleMonitoring {
		t.Errorf("empty state should fall back to text, got %s", got)
	}
}

func TestClassifier_NormalizeIndicator(t *testing.T) {
	c := New(0)

	tests := []struct {
		text     string
		expected models.Status
	}{
		{"none All Systems Operational", models.StatusOperational},
		{"none", models.StatusOperational},
		{"100.000% uptime", models.StatusOperational},
		{"minor Partially Degraded Service", models.StatusDegraded},
		{"major", models.StatusOutage},
		{"major Major System Outage", models.StatusOutage},
		{"critical", models.StatusOutage},
		{"minor", models.StatusIncident},
		{"minor Service Disruption", models.StatusIncident},
		{"maintenance Service Under Maintenance", models.StatusMaintenance},
		{"banana", models.StatusUnknown},
		{"", models.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.NormalizeIndicator(tt.text); got != tt.expected {
				t.Errorf("NormalizeIndicator(%q) = %s, want %s", tt.text, got, tt.expected)
			}
		})
	}
}

func BenchmarkClassifyText(b *testing.B) {
	c := New(0)
	text := "Elevated error rates on the API. We are investigating reports of degraded performance for some customers."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ClassifyText(text)
	}
}
