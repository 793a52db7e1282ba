package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordToggle(t *testing.T) {
	counter := ToggleTotal.WithLabelValues("like", "video", OutcomeActivated)
	before := testutil.ToFloat64(counter)

	RecordToggle("like", "video", OutcomeActivated)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordOwnershipDenied(t *testing.T) {
	counter := OwnershipDeniedTotal.WithLabelValues("playlist")
	before := testutil.ToFloat64(counter)

	RecordOwnershipDenied("playlist")
	RecordOwnershipDenied("playlist")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestObserveView(t *testing.T) {
	before := testutil.CollectAndCount(ViewDuration)

	ObserveView("metrics_test_view", time.Now().Add(-10*time.Millisecond))

	assert.Equal(t, before+1, testutil.CollectAndCount(ViewDuration))
}
