package metrics

/*
Labels and so on for metrics used in stook.
*/

const (
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelSuccess = "success"

	// Labels for action and dispatch metrics
	LabelStrategy = "strategy"
	LabelType     = "type"
	LabelOutcome  = "outcome"
)
