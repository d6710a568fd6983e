package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type OptimizationReportMailData struct {
	Category string                `json:"category"`
	Year     int32                 `json:"year"`
	Month    int32                 `json:"month"`
	Outcomes []OptimizationOutcome `json:"outcomes"`
	Failures []string              `json:"failures"`
}
