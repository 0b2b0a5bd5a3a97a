package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var myt = time.FixedZone("MYT", 8*60*60)

// fixedNow is a Monday afternoon in mid December.
var fixedNow = time.Date(2025, time.December, 15, 14, 30, 45, 123, myt)

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 14, 30, 45, 0, myt)
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		now      time.Time
		date     time.Time
		explicit bool
		residual string
	}{
		{"today", "grab today", fixedNow, fixedNow, true, "grab"},
		{"hari ini", "hari ini makan", fixedNow, fixedNow, true, "makan"},
		{"yesterday", "yesterday kopi", fixedNow, fixedNow.AddDate(0, 0, -1), true, "kopi"},
		{"semalam", "semalam", fixedNow, fixedNow.AddDate(0, 0, -1), true, ""},
		{"day first numeric", "1/12 headphones", fixedNow, at(2025, time.December, 1), true, "headphones"},
		{"numeric today", "15-12", fixedNow, at(2025, time.December, 15), true, ""},
		{"two digit year", "3/4/24 books", fixedNow, at(2024, time.April, 3), true, "books"},
		{"four digit year", "3-4-2024", fixedNow, at(2024, time.April, 3), true, ""},
		{"calendar overflow is accepted", "31/02/2025", fixedNow, at(2025, time.March, 3), true, ""},
		{"future numeric falls through", "16/12 parking", fixedNow, fixedNow, false, "16/12 parking"},
		{"day out of range", "32/01 parking", fixedNow, fixedNow, false, "32/01 parking"},
		{"month out of range", "01/13", fixedNow, fixedNow, false, "01/13"},
		{"named month english", "12 jan movie", fixedNow, at(2025, time.January, 12), true, "movie"},
		{"named month malay", "3 ogos", fixedNow, at(2025, time.August, 3), true, ""},
		{"named month abbreviation", "5 mac tuition", fixedNow, at(2025, time.March, 5), true, "tuition"},
		{"named month in the future rolls back", "20 dec", fixedNow, at(2024, time.December, 20), true, ""},
		{"no date", "nasi lemak", fixedNow, fixedNow, false, "nasi lemak"},
		{"partial word is not a date", "todays special", fixedNow, fixedNow, false, "todays special"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, residual := ResolveDate(tc.input, tc.now)
			assert.True(t, tc.date.Equal(got.Date), "date = %v, want %v", got.Date, tc.date)
			assert.Equal(t, tc.explicit, got.Explicit)
			assert.Equal(t, tc.residual, residual)
		})
	}
}

func TestResolveDate_NumericBeforeDecember(t *testing.T) {
	june := time.Date(2025, time.June, 10, 9, 0, 0, 0, myt)

	got, residual := ResolveDate("1/12", june)

	assert.False(t, got.Explicit)
	assert.True(t, june.Equal(got.Date))
	assert.Equal(t, "1/12", residual)
}

func TestResolveDate_NamedMonthInNovember(t *testing.T) {
	november := time.Date(2025, time.November, 20, 9, 0, 0, 0, myt)

	got, _ := ResolveDate("12 jan", november)

	assert.True(t, got.Explicit)
	assert.Equal(t, 2025, got.Date.Year())
	assert.Equal(t, time.January, got.Date.Month())
	assert.Equal(t, 12, got.Date.Day())
}

func TestResolveDate_YesterdayAcrossMonthBoundary(t *testing.T) {
	first := time.Date(2025, time.March, 1, 8, 0, 0, 0, myt)

	got, _ := ResolveDate("semalam", first)

	assert.Equal(t, time.February, got.Date.Month())
	assert.Equal(t, 28, got.Date.Day())
}
