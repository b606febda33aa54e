package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		DOB Date `json:"dob"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dob":"1995-04-12"}`), &payload))
	assert.Equal(t, NewDate(1995, time.April, 12), payload.DOB)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dob":"1995-04-12"}`, string(out))
}

func TestDate_JSONRejectsBadInput(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"12/04/1995"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`19950412`), &d))
}

func TestDate_ZeroIsNull(t *testing.T) {
	out, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
	}{
		{"time", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"bytes", []byte("2024-03-05")},
		{"timestamp string", "2024-03-05 00:00:00+00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, NewDate(2024, time.March, 5), d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}
