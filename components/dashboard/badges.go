package dashboard

// Severity is the visual weight of a badge or alert.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityPrimary Severity = "primary"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityNeutral Severity = "neutral"
)

// BadgeClass returns the CSS class used by the templates.
func (s Severity) BadgeClass() string {
	if s == SeverityNeutral || s == "" {
		return "bg-secondary"
	}
	return "bg-" + string(s)
}

var actionSeverities = map[MovementAction]Severity{
	ActionRecommended: SeveritySuccess,
	ActionAdded:       SeverityPrimary,
	ActionUpdated:     SeverityWarning,
	ActionDeleted:     SeverityDanger,
}

var statusSeverities = map[CaseStatus]Severity{
	StatusPending:   SeverityWarning,
	StatusReviewing: SeverityInfo,
	StatusResolved:  SeveritySuccess,
}

// ActionSeverity maps a movement action to its badge; unknown actions are neutral.
func ActionSeverity(action MovementAction) Severity {
	if sev, ok := actionSeverities[action]; ok {
		return sev
	}
	return SeverityNeutral
}

// StatusSeverity maps a case status to its badge; unknown statuses are neutral.
func StatusSeverity(status CaseStatus) Severity {
	if sev, ok := statusSeverities[status]; ok {
		return sev
	}
	return SeverityNeutral
}
