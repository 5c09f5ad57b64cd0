package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

var testEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func testCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := New(testEpoch, []Segment{
		{"Aleph", 3}, // dapim 2..4, 6 amudim
		{"Bet", 2},   // dapim 2..3, 4 amudim
	})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsEmptySegments(t *testing.T) {
	_, err := New(testEpoch, nil)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestNew_RejectsZeroSizedSegment(t *testing.T) {
	_, err := New(testEpoch, []Segment{{"Aleph", 0}})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestLength(t *testing.T) {
	c := testCalculator(t)
	assert.Equal(t, 10, c.Length())
}

func TestPositionAt_EpochFixtures(t *testing.T) {
	c := testCalculator(t)

	tests := []struct {
		name string
		date time.Time
		want Position
	}{
		{"epoch is first daf amud a", testEpoch, Position{"Aleph", 2, "a"}},
		{"next day flips the amud", testEpoch.AddDate(0, 0, 1), Position{"Aleph", 2, "b"}},
		{"third day advances the daf", testEpoch.AddDate(0, 0, 2), Position{"Aleph", 3, "a"}},
		{"last amud of first segment", testEpoch.AddDate(0, 0, 5), Position{"Aleph", 4, "b"}},
		{"second segment restarts at daf 2", testEpoch.AddDate(0, 0, 6), Position{"Bet", 2, "a"}},
		{"last day of the cycle", testEpoch.AddDate(0, 0, 9), Position{"Bet", 3, "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PositionAt(tt.date))
		})
	}
}

func TestPositionAt_FullPeriodicity(t *testing.T) {
	c := testCalculator(t)
	atEpoch := c.PositionAt(testEpoch)

	for _, k := range []int{1, 2, 7, -1, -3} {
		date := testEpoch.AddDate(0, 0, k*c.Length())
		assert.Equal(t, atEpoch, c.PositionAt(date), "k=%d", k)
	}
}

func TestPositionAt_BeforeEpoch(t *testing.T) {
	c := testCalculator(t)

	// Four days before the epoch: offset ((-4 mod 10)+10) mod 10 = 6,
	// the first amud of the second segment.
	got := c.PositionAt(testEpoch.AddDate(0, 0, -4))
	assert.Equal(t, Position{"Bet", 2, "a"}, got)

	// One day before the epoch wraps to the very last amud.
	got = c.PositionAt(testEpoch.AddDate(0, 0, -1))
	assert.Equal(t, Position{"Bet", 3, "b"}, got)
}

func TestPositionAt_TimeOfDayIrrelevant(t *testing.T) {
	c := testCalculator(t)

	morning := testEpoch.Add(1 * time.Hour)
	night := testEpoch.Add(23 * time.Hour)
	assert.Equal(t, c.PositionAt(morning), c.PositionAt(night))
}

func TestDefault_FullBavli(t *testing.T) {
	c := Default()

	// 2711 dapim in the standard cycle, one amud per day.
	assert.Equal(t, 2711*2, c.Length())

	first := c.PositionAt(DefaultEpoch)
	assert.Equal(t, Position{"Berakhot", 2, "a"}, first)

	// Berakhot spans 63 dapim = 126 days; the next day opens Shabbat.
	lastBerakhot := c.PositionAt(DefaultEpoch.AddDate(0, 0, 125))
	assert.Equal(t, Position{"Berakhot", 64, "b"}, lastBerakhot)

	firstShabbat := c.PositionAt(DefaultEpoch.AddDate(0, 0, 126))
	assert.Equal(t, Position{"Shabbat", 2, "a"}, firstShabbat)
}
