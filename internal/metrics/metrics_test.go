package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(dispatchTotal.WithLabelValues(OutcomePartial))
	RecordDispatch(OutcomePartial, 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(dispatchTotal.WithLabelValues(OutcomePartial)))

	beforeFail := testutil.ToFloat64(deliveriesTotal.WithLabelValues("failure", "transient"))
	RecordDelivery(false, "transient")
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(deliveriesTotal.WithLabelValues("failure", "transient")))

	beforeOK := testutil.ToFloat64(deliveriesTotal.WithLabelValues("success", ""))
	RecordDelivery(true, "")
	assert.Equal(t, beforeOK+1, testutil.ToFloat64(deliveriesTotal.WithLabelValues("success", "")))

	beforePrune := testutil.ToFloat64(tokensPrunedTotal)
	RecordPrune()
	assert.Equal(t, beforePrune+1, testutil.ToFloat64(tokensPrunedTotal))
}
