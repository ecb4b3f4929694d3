package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(ResourceLoads.WithLabelValues("test-kind", StatusOK))
	errBefore := testutil.ToFloat64(ResourceLoads.WithLabelValues("test-kind", StatusError))

	RecordLoad("test-kind", 10*time.Millisecond, nil)
	RecordLoad("test-kind", 5*time.Millisecond, errors.New("missing weights"))
	RecordLoad("test-kind", time.Millisecond, nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ResourceLoads.WithLabelValues("test-kind", StatusOK)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(ResourceLoads.WithLabelValues("test-kind", StatusError)))
}

func TestRecordTranslation(t *testing.T) {
	before := testutil.ToFloat64(Translations.WithLabelValues("Klingon-test", StatusError))
	RecordTranslation("Klingon-test", errors.New("unsupported"))
	assert.Equal(t, before+1, testutil.ToFloat64(Translations.WithLabelValues("Klingon-test", StatusError)))
}
