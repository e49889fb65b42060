package model

const (
	BatchStatusSuccess = "SUCCESS"
	BatchStatusFailed  = "FAILED"
)

const (
	BatchLogLevelInfo  = "INFO"
	BatchLogLevelError = "ERROR"
)

// BatchLog is one audit row describing a single batch run. Rows are
// append-only; nothing in this codebase updates or deletes them.
type BatchLog struct {
	JobType       string `json:"job_type"`
	LogLevel      string `json:"log_level"`
	Status        string `json:"status"`
	AffectedCount int    `json:"affected_count"`
	Detail        string `json:"detail"`
	ErrorMessage  string `json:"error_message"`
}

// BatchDetail is the structured payload stored in BatchLog.Detail.
type BatchDetail struct {
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
	TotalCount   int `json:"total_count"`
}
