package metrics

import (
	"testing"
)

func TestFakeMetricsAcceptNilTagsAndFields(t *testing.T) {
	meter := NewMetricsFake()

	t.Run("Empty tags and fields", func(_ *testing.T) {
		meter.LogEvent(EventMessageForwarded, nil, nil)
		meter.LogChatEvent(EventReplyRouted, 0, nil)
		meter.Close()
	})
}
