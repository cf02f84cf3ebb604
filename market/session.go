package market

import "time"

// Session is a fixed open-to-close trading window in an exchange's local
// timezone. Open and Close are offsets from local midnight, so the same
// Session value describes every trading day.
type Session struct {
	Open  time.Duration
	Close time.Duration
	Loc   *time.Location
}

// USEquities returns the regular US equities session, 09:30-16:00 local,
// in the given location (normally America/New_York).
func USEquities(loc *time.Location) Session {
	return Session{
		Open:  9*time.Hour + 30*time.Minute,
		Close: 16 * time.Hour,
		Loc:   loc,
	}
}

// DefaultSession is the regular US equities session. Hosts without tzdata
// fall back to a fixed EST offset.
func DefaultSession() Session {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	return USEquities(loc)
}

// Window returns the [open, close) instants of the session on the calendar
// day containing t.
func (s Session) Window(t time.Time) (open, close time.Time) {
	day := s.Floor(t)
	return day.Add(s.Open), day.Add(s.Close)
}

// Floor truncates t to local midnight of its session day.
func (s Session) Floor(t time.Time) time.Time {
	lt := t.In(s.loc())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, s.loc())
}

// Today returns local midnight of the current day in the session timezone.
func (s Session) Today() time.Time {
	return s.Floor(time.Now())
}

func (s Session) loc() *time.Location {
	if s.Loc == nil {
		return time.UTC
	}
	return s.Loc
}
