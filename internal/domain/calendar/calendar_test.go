package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRollsOver(t *testing.T) {
	cases := []struct {
		name string
		in   GameDate
		want GameDate
	}{
		{"month end", MustNew(2023, 1, 31), MustNew(2023, 2, 1)},
		{"year end", MustNew(2023, 12, 31), MustNew(2024, 1, 1)},
		{"february common year", MustNew(2023, 2, 28), MustNew(2023, 3, 1)},
		{"february leap year", MustNew(2024, 2, 28), MustNew(2024, 2, 29)},
		{"leap day", MustNew(2024, 2, 29), MustNew(2024, 3, 1)},
		{"mid month", MustNew(2024, 6, 14), MustNew(2024, 6, 15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Next())
			assert.Equal(t, tc.want, tc.in.AddDays(1))
			assert.Equal(t, tc.in, tc.want.Prev())
		})
	}
}

func TestLeapYears(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2023))
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 28, DaysInMonth(2100, 2))
	assert.Equal(t, 0, DaysInMonth(2024, 13))
}

func TestAddDaysMatchesRepeatedNext(t *testing.T) {
	start := MustNew(2023, 11, 17)
	d := start
	for i := 1; i <= 800; i++ {
		d = d.Next()
		require.Equal(t, d, start.AddDays(i), "offset %d", i)
		require.Equal(t, i, start.DaysUntil(d))
		require.Equal(t, start, d.AddDays(-i))
	}
}

func TestOrdinalRoundTrip(t *testing.T) {
	for _, d := range []GameDate{MustNew(1, 1, 1), MustNew(1999, 12, 31), MustNew(2024, 2, 29), MustNew(2400, 12, 31)} {
		assert.Equal(t, d, FromOrdinal(d.Ordinal()))
	}
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, Monday, MustNew(2024, 1, 1).Weekday())
	assert.Equal(t, Thursday, MustNew(2024, 2, 29).Weekday())
	assert.Equal(t, Sunday, MustNew(2023, 12, 31).Weekday())
	assert.Equal(t, "Monday", Monday.String())
}

func TestAddMonthsClampsDay(t *testing.T) {
	assert.Equal(t, MustNew(2024, 2, 29), MustNew(2024, 1, 31).AddMonths(1))
	assert.Equal(t, MustNew(2025, 1, 31), MustNew(2024, 12, 31).AddMonths(1))
	assert.Equal(t, MustNew(2028, 11, 7), MustNew(2024, 11, 7).AddYears(4))
}

func TestParseAndCompare(t *testing.T) {
	d, err := Parse("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())

	_, err = Parse("2023-02-29")
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.True(t, d.Before(d.Next()))
	assert.True(t, d.OnOrAfter(d))
	assert.Equal(t, d.Next(), Max(d, d.Next()))
}
