package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSave(t *testing.T) {
	beforeOK := testutil.ToFloat64(Deletions.WithLabelValues(ResultOK))
	beforeErr := testutil.ToFloat64(Deletions.WithLabelValues(ResultError))
	beforePartial := testutil.ToFloat64(Saves.WithLabelValues(ResultPartial))

	ObserveSave(ResultPartial, 2, 1)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(Deletions.WithLabelValues(ResultOK)))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(Deletions.WithLabelValues(ResultError)))
	assert.Equal(t, beforePartial+1, testutil.ToFloat64(Saves.WithLabelValues(ResultPartial)))
}

func TestObserveBatchUpdate(t *testing.T) {
	before := testutil.ToFloat64(BatchUpdates.WithLabelValues(ResultError))
	ObserveBatchUpdate(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(BatchUpdates.WithLabelValues(ResultError)))
}
