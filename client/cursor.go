package client

import (
	"fieldfuze-dispatch/utils"
	"fmt"
	"time"
)

// Granularity is the width of the board's visible window.
type Granularity string

const (
	GranularityDay      Granularity = "day"
	GranularityThreeDay Granularity = "3day"
	GranularityWeek     Granularity = "week"
)

// IsValid reports whether g is a known granularity.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityThreeDay, GranularityWeek:
		return true
	}
	return false
}

// span is the number of days the window covers.
func (g Granularity) span() int {
	switch g {
	case GranularityThreeDay:
		return 3
	case GranularityWeek:
		return 7
	default:
		return 1
	}
}

// DateRange is a half-open [Start, End) window of calendar dates.
type DateRange struct {
	Start string
	End   string
}

// DateRangeCursor is an immutable position on the calendar. Every navigation
// returns a new cursor.
type DateRangeCursor struct {
	reference   time.Time
	granularity Granularity
}

// NewDateRangeCursor starts a cursor at a YYYY-MM-DD reference date.
func NewDateRangeCursor(reference string, g Granularity) (DateRangeCursor, error) {
	if !g.IsValid() {
		return DateRangeCursor{}, fmt.Errorf("unknown granularity %q", g)
	}
	t, err := utils.ParseDate(reference)
	if err != nil {
		return DateRangeCursor{}, fmt.Errorf("invalid reference date %q: %w", reference, err)
	}
	return DateRangeCursor{reference: t, granularity: g}, nil
}

// TodayCursor starts a cursor on the calendar date of now in loc.
func TodayCursor(now time.Time, loc *time.Location, g Granularity) (DateRangeCursor, error) {
	return NewDateRangeCursor(utils.TodayIn(now, loc), g)
}

func (c DateRangeCursor) Granularity() Granularity {
	return c.granularity
}

// Reference returns the reference date as YYYY-MM-DD.
func (c DateRangeCursor) Reference() string {
	return utils.FormatDate(c.reference)
}

// Range returns the visible window. A week starts on the Sunday on or before
// the reference date.
func (c DateRangeCursor) Range() DateRange {
	start := c.reference
	if c.granularity == GranularityWeek {
		start = start.AddDate(0, 0, -int(start.Weekday()))
	}
	return DateRange{
		Start: utils.FormatDate(start),
		End:   utils.FormatDate(start.AddDate(0, 0, c.granularity.span())),
	}
}

// Next moves the reference forward by one window.
func (c DateRangeCursor) Next() DateRangeCursor {
	c.reference = c.reference.AddDate(0, 0, c.granularity.span())
	return c
}

// Previous moves the reference back by one window.
func (c DateRangeCursor) Previous() DateRangeCursor {
	c.reference = c.reference.AddDate(0, 0, -c.granularity.span())
	return c
}

// Today moves the reference to the calendar date of now in loc.
func (c DateRangeCursor) Today(now time.Time, loc *time.Location) DateRangeCursor {
	t, _ := utils.ParseDate(utils.TodayIn(now, loc))
	c.reference = t
	return c
}

// JumpTo moves the reference to a YYYY-MM-DD date.
func (c DateRangeCursor) JumpTo(date string) (DateRangeCursor, error) {
	t, err := utils.ParseDate(date)
	if err != nil {
		return c, fmt.Errorf("invalid date %q: %w", date, err)
	}
	c.reference = t
	return c, nil
}

// WithGranularity keeps the reference date and changes the window width.
func (c DateRangeCursor) WithGranularity(g Granularity) (DateRangeCursor, error) {
	if !g.IsValid() {
		return c, fmt.Errorf("unknown granularity %q", g)
	}
	c.granularity = g
	return c, nil
}

// QueryBounds returns the startDate and inclusive endDate sent to the server.
func (c DateRangeCursor) QueryBounds() (string, string) {
	r := c.Range()
	end, _ := utils.AddDays(r.End, -1)
	return r.Start, end
}
