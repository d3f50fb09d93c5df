package notify

import (
	"fmt"
	"strings"

	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

func emoji(s models.Status) string {
	switch s {
	case models.StatusOperational:
		return "✅"
	case models.StatusIncident, models.StatusOutage:
		return "🚨"
	case models.StatusMaintenance:
		return "🔧"
	default:
		return "❓"
	}
}

// BuildDigest renders the consolidated alert for the triggering changes.
// roster holds the display names of every service currently in incident or
// outage, after this run's writes.
func BuildDigest(changes []models.StatusChange, roster []string) (subject, message string) {
	plural := ""
	if len(changes) > 1 {
		plural = "s"
	}
	subject = fmt.Sprintf("High-Priority Service Alert: %d Critical Service%s Updated", len(changes), plural)

	var b strings.Builder
	b.WriteString("High-Priority Service Status Updates:\n\n")
	for _, c := range changes {
		fmt.Fprintf(&b, "%s %s: %s → %s\n", emoji(c.NewStatus), c.ServiceName, c.OldStatus, c.NewStatus)
	}

	if len(roster) > 0 {
		b.WriteString("\n🚨 All Services Currently Experiencing Incidents:\n")
		for _, name := range roster {
			fmt.Fprintf(&b, "• %s\n", name)
		}
	} else {
		b.WriteString("\n✅ All monitored services are operational!\n")
	}
	return subject, b.String()
}
