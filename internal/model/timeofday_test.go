package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"12", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TimeOfDay(tt.want), got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", MustTimeOfDay("09:05").String())
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "23:59", TimeOfDay(1439).String())
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(MustTimeOfDay("13:45"))
	require.NoError(t, err)
	assert.Equal(t, `"13:45"`, string(data))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"08:15"`), &parsed))
	assert.Equal(t, MustTimeOfDay("08:15"), parsed)

	assert.Error(t, json.Unmarshal([]byte(`815`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`"8am"`), &parsed))
}

func TestTimeOfDayAddMinutes(t *testing.T) {
	start := MustTimeOfDay("09:00")
	assert.Equal(t, MustTimeOfDay("10:30"), start.AddMinutes(90))
}
