package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingKind returns a kind whose handler counts calls and returns the
// call number as its raw value.
func countingKind(calls *int, fail *error) Kind[int] {
	return Kind[int]{
		Prefix: "test",
		Handler: HandlerFunc[int](func(st State[int]) (int, []Reading, error) {
			*calls++
			if fail != nil && *fail != nil {
				return 0, nil, *fail
			}
			return *calls, []Reading{{Suffix: "/n", Payload: "x"}}, nil
		}),
	}
}

func TestNewDerivesName(t *testing.T) {
	tests := []struct {
		path string
		kind string
		want string
	}{
		{"/sys/class/thermal/thermal_zone0", "temp", "temp/thermal_zone0"},
		{"/sys/class/net/eth0/", "net", "net/eth0"},
		{"wlan0", "net", "net/wlan0"},
		{"/sys/class/hwmon/hwmon1/./", "temp", "temp/hwmon1"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var calls int
			k := countingKind(&calls, nil)
			k.Prefix = tt.kind
			s, err := New(tt.path, time.Second, k, clock.NewMock())
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
			assert.Equal(t, tt.path, s.Path())
			assert.Equal(t, tt.kind, s.Kind())
		})
	}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	var calls int
	k := countingKind(&calls, nil)

	for _, p := range []string{"", "/", ".", "..", "/sys/.."} {
		_, err := New(p, time.Second, k, nil)
		assert.ErrorIs(t, err, ErrConfiguration, "path %q", p)
	}

	_, err := New("/sys/class/net/eth0", 0, k, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New("/sys/class/net/eth0", time.Second, Kind[int]{Prefix: "x"}, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNameStableAcrossPolls(t *testing.T) {
	var calls int
	clk := clock.NewMock()
	a, err := New("/sys/class/net/eth0", time.Second, countingKind(&calls, nil), clk)
	require.NoError(t, err)
	b, err := New("/sys/class/net/eth0", time.Second, countingKind(&calls, nil), clk)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := a.Poll()
		require.NoError(t, err)
		clk.Add(time.Second)
	}
	assert.Equal(t, b.Name(), a.Name())
}

func TestPollFirstAlwaysDue(t *testing.T) {
	for _, interval := range []time.Duration{time.Millisecond, time.Minute, 24 * time.Hour} {
		var calls int
		s, err := New("/x/eth0", interval, countingKind(&calls, nil), clock.NewMock())
		require.NoError(t, err)

		out, err := s.Poll()
		require.NoError(t, err)
		assert.True(t, out.Due)
		assert.Equal(t, interval, out.NextDueIn)
		assert.Equal(t, 1, calls)
	}
}

func TestPollNotDueSkipsHandler(t *testing.T) {
	var calls int
	clk := clock.NewMock()
	s, err := New("/x/eth0", 5*time.Second, countingKind(&calls, nil), clk)
	require.NoError(t, err)

	_, err = s.Poll()
	require.NoError(t, err)

	clk.Add(2 * time.Second)
	out, err := s.Poll()
	require.NoError(t, err)
	assert.False(t, out.Due)
	assert.Empty(t, out.Readings)
	assert.Equal(t, 3*time.Second, out.NextDueIn)
	assert.Equal(t, 1, calls)
}

func TestPollDueAtExactInterval(t *testing.T) {
	var calls int
	clk := clock.NewMock()
	s, err := New("/x/eth0", 5*time.Second, countingKind(&calls, nil), clk)
	require.NoError(t, err)

	_, err = s.Poll()
	require.NoError(t, err)
	clk.Add(5 * time.Second)

	out, err := s.Poll()
	require.NoError(t, err)
	assert.True(t, out.Due)
	assert.Equal(t, 5*time.Second, out.NextDueIn)
	assert.Equal(t, []Reading{{Suffix: "/n", Payload: "x"}}, out.Readings)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Value)
	assert.Equal(t, clk.Now(), last.ObservedAt)
}

func TestPollFailureKeepsLastSample(t *testing.T) {
	var calls int
	var fail error
	clk := clock.NewMock()
	s, err := New("/x/eth0", time.Second, countingKind(&calls, &fail), clk)
	require.NoError(t, err)

	_, err = s.Poll()
	require.NoError(t, err)
	before, _ := s.Last()

	boom := errors.New("boom")
	fail = boom
	clk.Add(time.Second)
	_, err = s.Poll()
	assert.ErrorIs(t, err, boom)

	after, _ := s.Last()
	assert.Equal(t, before, after)

	// Still overdue, so the next poll retries without waiting.
	fail = nil
	clk.Add(time.Millisecond)
	out, err := s.Poll()
	require.NoError(t, err)
	assert.True(t, out.Due)
	assert.Equal(t, 3, calls)
}

func TestPollFailureBeforeFirstSample(t *testing.T) {
	var calls int
	fail := errors.New("missing")
	s, err := New("/x/eth0", time.Hour, countingKind(&calls, &fail), clock.NewMock())
	require.NoError(t, err)

	_, err = s.Poll()
	require.Error(t, err)
	_, ok := s.Last()
	assert.False(t, ok)

	_, err = s.Poll()
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestHandlerSeesCopyOfLast(t *testing.T) {
	clk := clock.NewMock()
	k := Kind[int]{
		Prefix: "test",
		Handler: HandlerFunc[int](func(st State[int]) (int, []Reading, error) {
			if st.Last != nil {
				st.Last.Value = -1
				st.Last.ObservedAt = time.Time{}
			}
			return 7, nil, nil
		}),
	}
	s, err := New("/x/a", time.Second, k, clk)
	require.NoError(t, err)

	_, err = s.Poll()
	require.NoError(t, err)
	first, _ := s.Last()

	clk.Add(time.Second)
	_, err = s.Poll()
	require.NoError(t, err)
	second, _ := s.Last()

	assert.Equal(t, 7, second.Value)
	assert.True(t, second.ObservedAt.After(first.ObservedAt))
}
