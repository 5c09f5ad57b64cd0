// Package cycle implements the deterministic page-a-day Talmud study cycle
// calculator: a calendar date maps onto a tractate, a daf, and an amud.
// One amud is studied per day; dapim are numbered from 2 by convention
// (folio 1 is the title page), and each daf has two amudim, "a" and "b".
package cycle

import (
	"math"
	"time"

	"github.com/analist0/tehillim-hub/internal/domain/shared"
)

// FirstDaf is the conventional number of the first studied folio.
const FirstDaf = 2

// Segment is one named tractate with its count of studied dapim.
type Segment struct {
	Name  string
	Dapim int
}

// Position is one day's place in the cycle.
type Position struct {
	Tractate string `json:"tractate"`
	Daf      int    `json:"daf"`
	Amud     string `json:"amud"`
}

// Calculator maps dates onto positions in a repeating cycle. It is pure
// static configuration: an epoch anchoring day 0 and an ordered segment
// list, never mutated after construction.
type Calculator struct {
	epoch    time.Time
	segments []Segment
	length   int // total amudim in one full cycle
}

// New creates a Calculator. The epoch is truncated to the start of its day
// in its own location, so only the calendar date of the anchor matters.
func New(epoch time.Time, segments []Segment) (*Calculator, error) {
	if len(segments) == 0 {
		return nil, shared.ErrEmptyCycle
	}

	length := 0
	for _, seg := range segments {
		if seg.Dapim <= 0 {
			return nil, shared.NewDomainError("cycle", "Validate", shared.ErrValueOutOfRange, "segment "+seg.Name+" has no dapim")
		}
		length += seg.Dapim * 2
	}

	y, m, d := epoch.Date()
	return &Calculator{
		epoch:    time.Date(y, m, d, 0, 0, 0, 0, epoch.Location()),
		segments: segments,
		length:   length,
	}, nil
}

// Default returns the calculator for the standard cycle through the
// full Talmud Bavli.
func Default() *Calculator {
	c, err := New(DefaultEpoch, Tractates())
	if err != nil {
		// The built-in catalog is statically valid.
		panic(err)
	}
	return c
}

// Length returns the number of days in one full cycle.
func (c *Calculator) Length() int {
	return c.length
}

// Epoch returns day 0 of the cycle.
func (c *Calculator) Epoch() time.Time {
	return c.epoch
}

// PositionAt returns the position for the given date. Deterministic and
// side-effect free. Dates before the epoch resolve to a valid position via
// true mathematical modulo; the cycle repeats forever in both directions.
func (c *Calculator) PositionAt(date time.Time) Position {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.epoch.Location())

	daysSinceEpoch := int(math.Floor(day.Sub(c.epoch).Hours() / 24))
	offset := ((daysSinceEpoch % c.length) + c.length) % c.length

	for _, seg := range c.segments {
		span := seg.Dapim * 2
		if offset < span {
			amud := "a"
			if offset%2 == 1 {
				amud = "b"
			}
			return Position{
				Tractate: seg.Name,
				Daf:      offset/2 + FirstDaf,
				Amud:     amud,
			}
		}
		offset -= span
	}

	// Unreachable: offset < length = sum of spans.
	panic("cycle: offset outside cycle length")
}

// DefaultEpoch anchors day 0 of the current page-a-day cycle.
var DefaultEpoch = time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

// Tractates returns the ordered tractates of the Talmud Bavli with their
// standard counts of studied dapim (last folio number minus one, since
// numbering starts at daf 2).
func Tractates() []Segment {
	return []Segment{
		{"Berakhot", 63},
		{"Shabbat", 156},
		{"Eruvin", 104},
		{"Pesachim", 120},
		{"Shekalim", 21},
		{"Yoma", 87},
		{"Sukkah", 55},
		{"Beitzah", 39},
		{"Rosh Hashanah", 34},
		{"Taanit", 30},
		{"Megillah", 31},
		{"Moed Katan", 28},
		{"Chagigah", 26},
		{"Yevamot", 121},
		{"Ketubot", 111},
		{"Nedarim", 90},
		{"Nazir", 65},
		{"Sotah", 48},
		{"Gittin", 89},
		{"Kiddushin", 81},
		{"Bava Kamma", 118},
		{"Bava Metzia", 118},
		{"Bava Batra", 175},
		{"Sanhedrin", 112},
		{"Makkot", 23},
		{"Shevuot", 48},
		{"Avodah Zarah", 75},
		{"Horayot", 13},
		{"Zevachim", 119},
		{"Menachot", 109},
		{"Chullin", 141},
		{"Bechorot", 60},
		{"Arachin", 33},
		{"Temurah", 33},
		{"Keritot", 27},
		{"Meilah", 21},
		{"Niddah", 72},
	}
}
