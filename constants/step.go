package constants

// Step is the canonical workflow position for a session.
type Step int

// Stable values, in pipeline order.
const (
	StepUpload      Step = 1 // waiting for a file selection
	StepQuery       Step = 2 // waiting for an extraction query
	StepProcessing  Step = 3 // extraction request in flight
	StepPreview     Step = 4 // canonical record available
	StepReportReady Step = 5 // report generation completed
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "UPLOAD"
	case StepQuery:
		return "QUERY"
	case StepProcessing:
		return "PROCESSING"
	case StepPreview:
		return "PREVIEW"
	case StepReportReady:
		return "REPORT_READY"
	default:
		return "UNKNOWN"
	}
}
