package classifier

import (
	"time"

	"github.com/rajasatyajit/StatusAggregator/internal/models"
	"github.com/rajasatyajit/StatusAggregator/pkg/utils"
)

// DefaultRecencyWindow is how long a feed incident keeps influencing the
// live status.
const DefaultRecencyWindow = 24 * time.Hour

var (
	maintenanceKeywords = []string{"maintenance", "scheduled", "planned", "upgrade"}

	outageKeywords   = []string{"outage", "down", "unavailable", "offline", "major", "critical"}
	degradedKeywords = []string{"degraded", "partial"}
	incidentKeywords = []string{
		"incident", "disruption", "investigating", "monitoring", "identified", "service disruption",
	}

	resolutionKeywords = []string{"resolved", "completed", "fixed", "restored"}

	// provider indicator vocabulary
	indicatorOperational = []string{"operational", "available", "none", "100% uptime", "100.000% uptime"}
	indicatorDegraded    = []string{"degraded", "partial", "slow", "performance"}
	indicatorOutage      = []string{"major", "outage", "critical"}
	indicatorIncident    = []string{"minor", "incident", "disruption", "monitoring"}
	indicatorMaintenance = []string{"maintenance"}
)

// Classifier derives canonical statuses from incident text
type Classifier struct {
	window time.Duration
}

// New creates a classifier. A non-positive window uses DefaultRecencyWindow.
func New(window time.Duration) *Classifier {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Classifier{window: window}
}

// Window returns the recency window
func (c *Classifier) Window() time.Duration {
	return c.window
}

// ClassifyFeed returns the live status implied by the most recent feed
// incident. No incident, or one older than the window, is operational.
func (c *Classifier) ClassifyFeed(last *models.Incident, now time.Time) models.Status {
	if last == nil {
		return models.StatusOperational
	}
	if now.Sub(last.CreatedAt) > c.window {
		return models.StatusOperational
	}
	return c.ClassifyText(last.Title + " " + last.Description)
}

// ClassifyText applies the keyword groups in priority order; the first
// group that matches decides the status.
func (c *Classifier) ClassifyText(text string) models.Status {
	content := utils.NormalizeText(text)
	resolved := utils.ContainsAny(content, resolutionKeywords)

	switch {
	case utils.ContainsAny(content, maintenanceKeywords):
		if resolved {
			return models.StatusOperational
		}
		return models.StatusMaintenance
	case utils.ContainsAny(content, outageKeywords):
		if resolved {
			return models.StatusOperational
		}
		return models.StatusOutage
	case utils.ContainsAny(content, degradedKeywords):
		if resolved {
			return models.StatusOperational
		}
		return models.StatusDegraded
	case utils.ContainsAny(content, incidentKeywords):
		if resolved {
			return models.StatusOperational
		}
		return models.StatusIncident
	case resolved:
		return models.StatusOperational
	default:
		// recent but unclassified text is not assumed safe
		return models.StatusDegraded
	}
}

// Lifecycle tags a single incident from its own text
func (c *Classifier) Lifecycle(text string) models.Lifecycle {
	content := utils.NormalizeText(text)
	switch {
	case utils.ContainsAny(content, []string{"resolved"}):
		return models.LifecycleResolved
	case utils.ContainsAny(content, []string{"monitoring"}):
		return models.LifecycleMonitoring
	case utils.ContainsAny(content, []string{"identified"}):
		return models.LifecycleIdentified
	default:
		return models.LifecycleInvestigating
	}
}

// ProviderLifecycle maps a provider-supplied incident status, falling back
// to text tagging when the provider value is not one of ours.
func (c *Classifier) ProviderLifecycle(state, text string) models.Lifecycle {
	switch l := models.Lifecycle(utils.NormalizeText(state)); l {
	case models.LifecycleInvestigating, models.LifecycleIdentified,
		models.LifecycleMonitoring, models.LifecycleResolved:
		return l
	case "postmortem", "completed":
		return models.LifecycleResolved
	}
	return c.Lifecycle(text)
}

// NormalizeIndicator maps a provider's own status claim onto the canonical
// taxonomy. No recency window applies.
func (c *Classifier) NormalizeIndicator(text string) models.Status {
	content := utils.NormalizeText(text)
	switch {
	case utils.ContainsAny(content, indicatorOperational):
		return models.StatusOperational
	case utils.ContainsAny(content, indicatorDegraded):
		return models.StatusDegraded
	case utils.ContainsAny(content, indicatorOutage):
		return models.StatusOutage
	case utils.ContainsAny(content, indicatorIncident):
		return models.StatusIncident
	case utils.ContainsAny(content, indicatorMaintenance):
		return models.StatusMaintenance
	default:
		return models.StatusUnknown
	}
}
