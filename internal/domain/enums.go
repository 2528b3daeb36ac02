package domain

// PublicationStatus describes the lifecycle of a content plan item.
type PublicationStatus string

const (
	StatusScheduled PublicationStatus = "scheduled"
	StatusPublished PublicationStatus = "published"
	StatusOverdue   PublicationStatus = "overdue"
)

// ValidPublicationStatuses is the canonical set of accepted status strings.
var ValidPublicationStatuses = map[string]bool{
	"scheduled": true, "published": true, "overdue": true,
}
