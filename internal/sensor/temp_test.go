package sensor

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureConversion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"45230", "45.23"},
		{"45230\n", "45.23"},
		{"0", "0.00"},
		{"100000", "100.00"},
		{"-5500", "-5.50"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, TempFile, tt.raw)

			s, err := New(dir, 30*time.Second, Temperature, clock.NewMock())
			require.NoError(t, err)

			out, err := s.Poll()
			require.NoError(t, err)
			require.Len(t, out.Readings, 1)
			assert.Equal(t, "", out.Readings[0].Suffix)
			assert.Equal(t, tt.want, out.Readings[0].Payload)
		})
	}
}

func TestTemperatureMissingFile(t *testing.T) {
	s, err := New(t.TempDir(), time.Second, Temperature, clock.NewMock())
	require.NoError(t, err)

	_, err = s.Poll()
	assert.ErrorIs(t, err, ErrRead)
}
