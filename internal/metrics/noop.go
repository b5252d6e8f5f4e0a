package metrics

import "time"

// NoopMetrics discards every observation. Used in tests and when metrics
// are disabled.
type NoopMetrics struct{}

var _ Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordInitiation(result string)     {}
func (n *NoopMetrics) RecordVerification(result string)   {}
func (n *NoopMetrics) RecordPoll(status string)           {}
func (n *NoopMetrics) RecordSessionRevocations(count int) {}
func (n *NoopMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
}
