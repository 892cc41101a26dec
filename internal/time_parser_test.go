package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaxAge(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty is disabled", in: "", want: 0},
		{name: "bare seconds", in: "30", want: 30 * time.Second},
		{name: "padded seconds", in: " 5 ", want: 5 * time.Second},
		{name: "go duration", in: "6m0s", want: 6 * time.Minute},
		{name: "milliseconds", in: "250ms", want: 250 * time.Millisecond},
		{name: "negative seconds", in: "-1", wantErr: true},
		{name: "garbage", in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaxAge(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceID(t *testing.T) {
	now := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	id := DeviceID(now)

	ms := now.UnixMilli()
	assert.Len(t, id, 12)
	assert.Equal(t, "070324", id[:6])
	assert.Equal(t, ms%1_000_000, mustAtoi(t, id[6:]))
}

func TestIsInFuture(t *testing.T) {
	assert.True(t, IsInFuture(time.Now().Add(time.Hour)))
	assert.False(t, IsInFuture(time.Now().Add(-time.Hour)))
}

func mustAtoi(t *testing.T, s string) int64 {
	t.Helper()
	var n int64
	for _, c := range s {
		require.True(t, c >= '0' && c <= '9', "non-digit in %q", s)
		n = n*10 + int64(c-'0')
	}
	return n
}
