package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/matchlog"
)

func records() []matchlog.Record {
	return []matchlog.Record{{
		Timestamp:   time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		MatchID:     "m1",
		RideID:      "r1",
		Available:   []string{"v3", "v1"},
		Unavailable: map[string]string{"v4": "on_leave", "v2": "weekly_limit"},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))
	want := "timestamp,match_id,ride_id,driver_id,available,reason_code\n" +
		"2024-06-10T12:00:00Z,m1,r1,v3,true,\n" +
		"2024-06-10T12:00:00Z,m1,r1,v1,true,\n" +
		"2024-06-10T12:00:00Z,m1,r1,v2,false,weekly_limit\n" +
		"2024-06-10T12:00:00Z,m1,r1,v4,false,on_leave\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, records()))
	var out []matchlog.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "m1", out[0].MatchID)
}
