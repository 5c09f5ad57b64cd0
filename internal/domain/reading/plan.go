package reading

import "time"

// Portion is a contiguous chapter range read on one day of the monthly
// plan. StartChapter and EndChapter are inclusive.
type Portion struct {
	Day          int `json:"day"`
	StartChapter int `json:"start_chapter"`
	EndChapter   int `json:"end_chapter"`
}

// monthlyPlan is the traditional thirty-day division of the book. Days 25
// and 26 both sit on chapter 119, which is split by verse in practice; at
// chapter granularity both days carry the whole chapter.
var monthlyPlan = [30]Portion{
	{1, 1, 9}, {2, 10, 17}, {3, 18, 22}, {4, 23, 28}, {5, 29, 34},
	{6, 35, 38}, {7, 39, 43}, {8, 44, 48}, {9, 49, 54}, {10, 55, 59},
	{11, 60, 65}, {12, 66, 68}, {13, 69, 71}, {14, 72, 76}, {15, 77, 78},
	{16, 79, 82}, {17, 83, 87}, {18, 88, 89}, {19, 90, 96}, {20, 97, 103},
	{21, 104, 105}, {22, 106, 107}, {23, 108, 112}, {24, 113, 118},
	{25, 119, 119}, {26, 119, 119}, {27, 120, 134}, {28, 135, 139},
	{29, 140, 144}, {30, 145, 150},
}

// MonthlyPlan returns the full thirty-day division.
func MonthlyPlan() []Portion {
	plan := make([]Portion, len(monthlyPlan))
	copy(plan, monthlyPlan[:])
	return plan
}

// PortionFor returns the day's portion of the monthly plan. Days past the
// thirtieth read day thirty's portion again. On the last day of a month
// shorter than thirty days the portion extends to the end of the book, so
// no chapter is skipped.
func PortionFor(date time.Time) Portion {
	dom := date.Day()
	monthLen := daysInMonth(date)

	idx := dom
	if idx > 30 {
		idx = 30
	}
	portion := monthlyPlan[idx-1]

	if dom == monthLen && monthLen < 30 {
		portion.EndChapter = TotalChapters
	}
	return portion
}

func daysInMonth(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return first.AddDate(0, 1, -1).Day()
}
