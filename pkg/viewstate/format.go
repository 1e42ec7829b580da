package viewstate

import "time"

const (
	clockLayout        = "3:04 PM"
	weekdayClockLayout = "Mon 3:04 PM"
	dateClockLayout    = "Jan 2, 3:04 PM"
	paymentDateLayout  = "Mon Jan 2, 3:04 PM"
)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// chatTime renders t relative to now: clock only today, weekday within a week.
func chatTime(t, now time.Time, loc *time.Location) string {
	t, now = t.In(loc), now.In(loc)
	switch {
	case sameDay(t, now):
		return t.Format(clockLayout)
	case now.Sub(t) < 7*24*time.Hour && t.Before(now):
		return t.Format(weekdayClockLayout)
	default:
		return t.Format(dateClockLayout)
	}
}

func invoiceExpirationTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateClockLayout)
}

func invoicePaymentDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(paymentDateLayout)
}
