package models

// Alert levels reported to the "alerts" channel.
const (
	AlertLevelWarning  = "warning"
	AlertLevelCritical = "critical"
)

// Metric kinds the alert evaluator knows about.
const (
	MetricCPU    = "cpu"
	MetricMemory = "memory"
	MetricDisk   = "disk"
)

// Alert is an ephemeral threshold-violation notification. It is produced by
// the evaluator, pushed to subscribers, and never persisted.
type Alert struct {
	Type      string  `json:"type"`
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}
