package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluation(t *testing.T) {
	m := New()

	m.RecordEvaluation(10*time.Millisecond, 2.4, nil)
	m.RecordEvaluation(5*time.Millisecond, 0, nil)
	m.RecordEvaluation(time.Millisecond, 0, errors.New("bad squad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.EvaluationDuration))
}

func TestRecordValueBets(t *testing.T) {
	m := New()

	m.RecordValueBet("1X2", 0.2)
	m.RecordValueBet("1X2", 0.1)
	m.RecordValueBet("BTTS", 0.07)
	m.RecordRejectedOdds(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValueBetsTotal.WithLabelValues("1X2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValueBetsTotal.WithLabelValues("BTTS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RejectedOdds.WithLabelValues()))
}

func TestRecordDataMetrics(t *testing.T) {
	m := New()

	m.RecordFetch("http", nil)
	m.RecordFetch("http", errors.New("timeout"))
	m.RecordRejectedRows("players", 0)
	m.RecordRejectedRows("standings", 2)
	m.UpdateStored("players", 40)
	m.UpdateStored("players", 38)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("http", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RejectedRows))
	assert.Equal(t, 38.0, testutil.ToFloat64(m.StoredRecords.WithLabelValues("players")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordValueBet("Over/Under 2.5", 0.12)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `matchodds_value_bets_total{market="Over/Under 2.5"} 1`), body)
}
