package metrics

// metricsFake is a no-op implementation of Metrics
type metricsFake struct{}

// Ensure metricsFake implements Metrics
var _ Metrics = (*metricsFake)(nil)

// NewMetricsFake creates a no-op Metrics instance
func NewMetricsFake() Metrics {
	return &metricsFake{}
}

// LogEvent is a no-op method for the fake metrics
func (metrics *metricsFake) LogEvent(_ string, _ map[string]string, _ map[string]interface{}) {
	// No operation, this is a fake logger
}

// LogChatEvent is a no-op method for the fake metrics
func (metrics *metricsFake) LogChatEvent(_ string, _ int64, _ map[string]interface{}) {
	// No operation, this is a fake logger
}

// Close is a no-op method for the fake metrics
func (metrics *metricsFake) Close() {
	// No operation, this is a fake logger
}
