package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestParseInclusiveEndOfDay(t *testing.T) {
	r, err := Parse("2024-01-10", "2024-01-15")
	require.NoError(t, err)

	assert.True(t, r.Contains(utc(2024, 1, 15, 0, 0, 0)), "end date at midnight")
	assert.True(t, r.Contains(utc(2024, 1, 15, 23, 59, 59)), "last second of end date")
	assert.False(t, r.Contains(utc(2024, 1, 16, 0, 0, 0)), "one second past end")
	assert.True(t, r.Contains(utc(2024, 1, 10, 0, 0, 0)), "start boundary")
	assert.False(t, r.Contains(utc(2024, 1, 9, 23, 59, 59)), "before start")
}

func TestParseOpenBounds(t *testing.T) {
	r, err := Parse("", "")
	require.NoError(t, err)
	assert.True(t, r.IsOpen())
	assert.True(t, r.Contains(time.Time{}))

	r, err = Parse("2024-01-10", "")
	require.NoError(t, err)
	assert.Nil(t, r.End)
	assert.True(t, r.Contains(utc(2030, 1, 1, 0, 0, 0)))
}

func TestParseInvalid(t *testing.T) {
	for _, in := range [][2]string{{"2024/01/10", ""}, {"", "yesterday"}, {"2024-13-01", ""}} {
		_, err := Parse(in[0], in[1])
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestStartAfterEndIsEmpty(t *testing.T) {
	r, err := Parse("2024-02-01", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, r.Contains(utc(2024, 1, 15, 0, 0, 0)))
}

func TestLookback(t *testing.T) {
	now := utc(2024, 3, 10, 15, 30, 0)
	r, err := Lookback(7, 30, now)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 3, 3, 0, 0, 0), *r.Start)
	assert.Equal(t, utc(2024, 3, 10, 23, 59, 59), *r.End)

	_, err = Lookback(31, 30, now)
	assert.ErrorIs(t, err, ErrInvalidLookback)
	_, err = Lookback(-1, 0, now)
	assert.ErrorIs(t, err, ErrInvalidLookback)
}

func TestResolve(t *testing.T) {
	now := utc(2024, 3, 10, 0, 0, 0)

	r, err := Resolve("2024-01-01", "", 5, 30, now)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 1, 0, 0, 0), *r.Start, "explicit dates win over lookback")

	r, err = Resolve("", "", 5, 30, now)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 3, 5, 0, 0, 0), *r.Start)

	r, err = Resolve("", "", 0, 30, now)
	require.NoError(t, err)
	assert.True(t, r.IsOpen())
}

func TestKeyDistinguishesRanges(t *testing.T) {
	a, _ := Parse("2024-01-01", "2024-01-02")
	b, _ := Parse("2024-01-01", "")
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, "|", Open.Key())
}
