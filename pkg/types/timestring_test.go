package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "09:30", want: "09:30"},
		{name: "with seconds", input: "17:45:00", want: "17:45"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "single digit hour", input: "9:30", wantErr: true},
		{name: "minutes overflow", input: "10:60", wantErr: true},
		{name: "past midnight", input: "24:15", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("11:45").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:15"), got)

	got, err = TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:15"))
	assert.False(t, TimeString("09:15").IsBefore("09:15"))
	assert.True(t, TimeString("13:00").IsAfter("12:59"))
	assert.True(t, TimeString("09:00").Equal("09:00"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan([]byte("14:00:00")))
	assert.Equal(t, TimeString("14:00"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("08:15"), ts)

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_On(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got := TimeString("14:30").On(date)
	assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), got)
}
