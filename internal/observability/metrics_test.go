package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/users", "POST", 201, 0)
	m.RecordRequest("/users", "POST", 201, 0)
	m.RecordRequest("/users", "GET", 200, 0)

	assert.Equal(t, int64(2), m.RequestCount("/users", "POST", 201))
	assert.Equal(t, int64(1), m.RequestCount("/users", "GET", 200))
	assert.Equal(t, int64(0), m.RequestCount("/users", "DELETE", 200))
}

func TestMetrics_RecordError(t *testing.T) {
	m := NewMetrics()

	m.RecordError("/users", "POST", "CONFLICT")

	assert.Equal(t, int64(1), m.ErrorCount("/users", "POST", "CONFLICT"))
	assert.Equal(t, int64(0), m.ErrorCount("/users", "POST", "NOT_FOUND"))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/users", "GET", 200, 0)
	m.RecordError("/users", "GET", "NOT_FOUND")
	assert.Equal(t, int64(0), m.RequestCount("/users", "GET", 200))
}
