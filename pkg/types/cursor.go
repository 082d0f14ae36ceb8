package types

import (
	"net/url"
	"strconv"
	"strings"
)

// TimePeriod is the time window for ranked listings such as top and
// controversial. The only non-zero values are the Period* variables; the zero
// value means no window is sent.
type TimePeriod struct {
	token string
}

var (
	PeriodHour  = TimePeriod{token: "hour"}
	PeriodDay   = TimePeriod{token: "day"}
	PeriodWeek  = TimePeriod{token: "week"}
	PeriodMonth = TimePeriod{token: "month"}
	PeriodYear  = TimePeriod{token: "year"}
	PeriodAll   = TimePeriod{token: "all"}
)

// String returns the query token ("hour", "day", ...), or "" for the zero value.
func (p TimePeriod) String() string {
	return p.token
}

// IsZero reports whether no period is set.
func (p TimePeriod) IsZero() bool {
	return p.token == ""
}

// ParsePeriod maps a query token back to its TimePeriod.
func ParsePeriod(s string) (TimePeriod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour":
		return PeriodHour, true
	case "day":
		return PeriodDay, true
	case "week":
		return PeriodWeek, true
	case "month":
		return PeriodMonth, true
	case "year":
		return PeriodYear, true
	case "all":
		return PeriodAll, true
	}
	return TimePeriod{}, false
}

// ListingCursor carries the pagination and sorting parameters understood by
// every listing endpoint. Zero-valued fields are treated as absent and are
// never serialized.
//
// Reddit uses "fullnames" such as "t3_abc123" for After and Before. Setting
// both is allowed; Reddit gives After precedence.
type ListingCursor struct {
	// Limit is the maximum number of items to return (Reddit caps it at 100).
	Limit int
	// After is the fullname of the last item of the previous page.
	After string
	// Before is the fullname of the first item of the next page.
	Before string
	// Count is the number of items already seen in this listing.
	Count int
	// Period restricts top/controversial listings to a time window.
	Period TimePeriod
}

// Apply appends the cursor's present parameters to u's query string in the
// order limit, after, before, count, t. Parameters already on u are kept and
// u's path is never modified. A nil cursor is a no-op.
func (c *ListingCursor) Apply(u *url.URL) {
	if c == nil || u == nil {
		return
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range c.pairs() {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	u.RawQuery = b.String()
}

// Values returns the present parameters as url.Values.
func (c *ListingCursor) Values() url.Values {
	v := url.Values{}
	if c == nil {
		return v
	}
	for _, p := range c.pairs() {
		v.Set(p[0], p[1])
	}
	return v
}

// Next returns a copy of the cursor positioned after the given fullname, with
// Count advanced by seen. Before is cleared.
func (c ListingCursor) Next(after string, seen int) ListingCursor {
	c.After = after
	c.Before = ""
	if seen > 0 {
		c.Count += seen
	}
	return c
}

func (c *ListingCursor) pairs() [][2]string {
	pairs := make([][2]string, 0, 5)
	if c.Limit > 0 {
		pairs = append(pairs, [2]string{"limit", strconv.Itoa(c.Limit)})
	}
	if c.After != "" {
		pairs = append(pairs, [2]string{"after", c.After})
	}
	if c.Before != "" {
		pairs = append(pairs, [2]string{"before", c.Before})
	}
	if c.Count > 0 {
		pairs = append(pairs, [2]string{"count", strconv.Itoa(c.Count)})
	}
	if !c.Period.IsZero() {
		pairs = append(pairs, [2]string{"t", c.Period.String()})
	}
	return pairs
}
