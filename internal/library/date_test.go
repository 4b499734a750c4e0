package library

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var b struct {
		LaunchDate *Date `json:"launch_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"launch_date":"1965-08-01"}`), &b))
	require.NotNil(t, b.LaunchDate)
	assert.Equal(t, "1965-08-01", b.LaunchDate.String())

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"launch_date":"1965-08-01"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"launch_date":"1965-08-01T00:00:00.000Z"}`), &b))
	assert.Equal(t, "1965-08-01", b.LaunchDate.String())

	b.LaunchDate = nil
	require.NoError(t, json.Unmarshal([]byte(`{"launch_date":null}`), &b))
	assert.Nil(t, b.LaunchDate)

	assert.Error(t, json.Unmarshal([]byte(`{"launch_date":"August 1965"}`), &b))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2001-02-03", d.String())

	require.NoError(t, d.Scan("2010-11-12"))
	assert.Equal(t, "2010-11-12", d.String())

	require.NoError(t, d.Scan([]byte("2010-11-13T00:00:00Z")))
	assert.Equal(t, "2010-11-13", d.String())

	v, err := NewDate(2020, time.March, 4).Value()
	require.NoError(t, err)
	assert.Equal(t, "2020-03-04", v)

	assert.Error(t, d.Scan(42))
}

func TestParseDueDate(t *testing.T) {
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-06-01", "2024-06-01T00:00:00Z", "2024-06-01T00:00:00", "2024-06-01T00:00", "2024-06-01 00:00:00", "2024-06-01T02:00:00+02:00"} {
		got, err := ParseDueDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
		assert.Equal(t, time.UTC, got.Location(), s)
	}

	_, err := ParseDueDate("next tuesday")
	assert.Error(t, err)
}
