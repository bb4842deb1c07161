// Package spend tallies confirmed payments against daily and monthly caps.
// The caps are display-only: the tracker reports threshold crossings but
// never blocks a payment.
package spend

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Alert is a cap-threshold crossing.
type Alert string

const (
	AlertDaily80    Alert = "daily_80"
	AlertDaily100   Alert = "daily_100"
	AlertMonthly80  Alert = "monthly_80"
	AlertMonthly100 Alert = "monthly_100"
)

// Snapshot is a point-in-time view of the tallies.
type Snapshot struct {
	DailySpent   decimal.Decimal
	DailyCap     decimal.Decimal
	MonthlySpent decimal.Decimal
	MonthlyCap   decimal.Decimal
}

// Tracker accumulates spend per calendar day and month. Periods roll over
// lazily on the next Record or Snapshot call.
type Tracker struct {
	mu           sync.Mutex
	dailyCap     decimal.Decimal
	monthlyCap   decimal.Decimal
	day          string
	month        string
	dailySpent   decimal.Decimal
	monthlySpent decimal.Decimal
}

// NewTracker creates a tracker with the given caps in USD. A zero or negative
// cap disables its alerts.
func NewTracker(dailyCap, monthlyCap float64) *Tracker {
	return &Tracker{
		dailyCap:   decimal.NewFromFloat(dailyCap),
		monthlyCap: decimal.NewFromFloat(monthlyCap),
	}
}

// Record adds a confirmed payment amount and returns the alerts whose
// thresholds this payment crossed.
func (t *Tracker) Record(amount float64, at time.Time) []Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover(at)

	add := decimal.NewFromFloat(amount)
	var alerts []Alert

	dailyBefore := t.dailySpent
	t.dailySpent = t.dailySpent.Add(add)
	alerts = append(alerts, crossings(dailyBefore, t.dailySpent, t.dailyCap, AlertDaily80, AlertDaily100)...)

	monthlyBefore := t.monthlySpent
	t.monthlySpent = t.monthlySpent.Add(add)
	alerts = append(alerts, crossings(monthlyBefore, t.monthlySpent, t.monthlyCap, AlertMonthly80, AlertMonthly100)...)

	return alerts
}

// Snapshot returns the current tallies.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover(now)
	return Snapshot{
		DailySpent:   t.dailySpent,
		DailyCap:     t.dailyCap,
		MonthlySpent: t.monthlySpent,
		MonthlyCap:   t.monthlyCap,
	}
}

// rollover resets a tally when its period changed. Caller holds the lock.
func (t *Tracker) rollover(at time.Time) {
	day := at.UTC().Format("2006-01-02")
	month := at.UTC().Format("2006-01")
	if day != t.day {
		t.day = day
		t.dailySpent = decimal.Zero
	}
	if month != t.month {
		t.month = month
		t.monthlySpent = decimal.Zero
	}
}

// crossings reports which of the 80% and 100% thresholds the tally crossed.
func crossings(before, after, limit decimal.Decimal, at80, at100 Alert) []Alert {
	if limit.Sign() <= 0 {
		return nil
	}
	var alerts []Alert
	threshold80 := limit.Mul(decimal.NewFromFloat(0.8))
	if before.LessThan(threshold80) && !after.LessThan(threshold80) {
		alerts = append(alerts, at80)
	}
	if before.LessThan(limit) && !after.LessThan(limit) {
		alerts = append(alerts, at100)
	}
	return alerts
}
