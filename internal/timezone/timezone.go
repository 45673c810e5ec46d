package timezone

import "time"

// DefaultTimezone is used only as a last-resort fallback for legacy rows with an
// unresolvable zone string; every store is expected to carry a valid IANA zone.
const DefaultTimezone = "UTC"

// IsValid reports whether tz resolves against the system zone database.
func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz against the IANA zone database, falling back to
// DefaultTimezone if tz is empty or unresolvable.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// Now returns the current instant expressed in the default zone.
func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

// NowIn returns the current instant expressed in tz's zone.
func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// DayOfWeek returns the weekday of t as observed in tz — the store's local calendar
// day, which is what operating-hours lookups must key on (§4.1).
func DayOfWeek(t time.Time, tz string) time.Weekday {
	return t.In(Location(tz)).Weekday()
}

// StartOfDay returns local midnight for t's calendar date in tz.
func StartOfDay(t time.Time, tz string) time.Time {
	loc := Location(tz)
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
