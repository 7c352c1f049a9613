package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstancesDoNotCollide(t *testing.T) {
	a := New()
	b := New()

	a.VersionsCreated.WithLabelValues("text").Inc()
	a.VersionsCreated.WithLabelValues("text").Inc()
	b.VersionsCreated.WithLabelValues("text").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.VersionsCreated.WithLabelValues("text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.VersionsCreated.WithLabelValues("text")))
}

func TestRecordOperation(t *testing.T) {
	m := New()
	m.RecordOperation("sqlite", "create_version", time.Millisecond, nil)
	m.RecordOperation("sqlite", "create_version", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("sqlite", "create_version", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("sqlite", "create_version", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}
