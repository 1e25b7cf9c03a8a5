package clock

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StreakKeeper/pkg/errors"
)

func TestAdapterConvertsToCivilZone(t *testing.T) {
	tests := []struct {
		name    string
		instant time.Time
		want    Civil
		key     string
	}{
		{
			name:    "winter uses CST",
			instant: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
			want:    Civil{Year: 2024, Month: 1, Day: 2, Hour: 9, Minute: 4, Second: 5},
			key:     "2024-01-02",
		},
		{
			name:    "summer uses CDT and crosses the date line",
			instant: time.Date(2024, 7, 1, 3, 30, 0, 0, time.UTC),
			want:    Civil{Year: 2024, Month: 6, Day: 30, Hour: 22, Minute: 30},
			key:     "2024-06-30",
		},
		{
			name:    "one minute before local midnight",
			instant: time.Date(2024, 1, 3, 5, 59, 0, 0, time.UTC),
			want:    Civil{Year: 2024, Month: 1, Day: 2, Hour: 23, Minute: 59},
			key:     "2024-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(Fake(tt.instant), "America/Chicago")
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.Now())
			assert.Equal(t, tt.key, a.TodayKey())
		})
	}
}

func TestAdapterUnknownZone(t *testing.T) {
	_, err := NewAdapter(Real(), "Mars/Olympus_Mons")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ClockUnavailable))
}

func TestCivilHelpers(t *testing.T) {
	c := Civil{Year: 2024, Month: 3, Day: 9, Hour: 9, Minute: 5}
	assert.Equal(t, "2024-03-09", c.DateKey())
	assert.Equal(t, 545, c.MinuteOfDay())
	assert.Equal(t, "9:05", c.ClockLabel())
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fake(start)
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestValidDateKey(t *testing.T) {
	assert.True(t, ValidDateKey("2024-02-29"))
	assert.False(t, ValidDateKey("2023-02-29"))
	assert.False(t, ValidDateKey("2024/01/01"))
	assert.False(t, ValidDateKey(""))
}
