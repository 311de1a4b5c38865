package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParsingAndArithmetic(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-29"), d.AddDays(1))
	assert.Equal(t, Date("2024-03-01"), d.AddDays(2))

	_, err = ParseDate("28/02/2024")
	assert.Error(t, err)
	assert.False(t, Date("2024-13-01").Valid())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2024-01-10"), d)
	require.NoError(t, d.Scan([]byte("2024-01-11T00:00:00Z")))
	assert.Equal(t, Date("2024-01-11"), d)
	assert.Error(t, d.Scan(42))
}

func TestRecordEventsScanValidates(t *testing.T) {
	var events RecordEvents
	require.NoError(t, events.Scan([]byte(`[{"id":"e1","type":"status","value":"+"},{"id":"e2","type":"note","value":"late"}]`)))
	require.Len(t, events, 2)
	note, ok := events.Note()
	require.True(t, ok)
	assert.Equal(t, "late", note.Value)

	assert.Error(t, events.Scan([]byte(`[{"id":"e1","type":"status","value":"X"}]`)))
	assert.Error(t, events.Scan([]byte(`[{"id":"e1","type":"mood","value":"ok"}]`)))
	assert.Error(t, events.Scan([]byte(`{}`)))

	require.NoError(t, events.Scan(nil))
	assert.Empty(t, events)
}

func TestRecordEventsValueNeverNull(t *testing.T) {
	var events RecordEvents
	v, err := events.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestUrgencySeverityOrder(t *testing.T) {
	order := []Urgency{UrgencyNone, UrgencyInfo, UrgencyUrgent, UrgencyVeryUrgent, UrgencyPastDue}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Severity(), order[i].Severity())
	}
}

func TestNewStatusCountsHasEveryStatus(t *testing.T) {
	counts := NewStatusCounts()
	assert.Len(t, counts, 5)
	for _, s := range Statuses {
		v, ok := counts[s]
		assert.True(t, ok)
		assert.Zero(t, v)
	}
}
