// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring budget scheduling.
// Each cadence (weekly, biweekly, monthly, annual) has its own strategy
// that encapsulates the logic for determining if a posting is due.

package services

import (
	"fmt"
	"time"

	"cambio/internal/core"
)

// ScheduleChecker is the strategy interface for checking if a recurring
// budget is due for posting. Each implementation encapsulates the algorithm
// for a specific cadence.
type ScheduleChecker interface {
	// IsDue returns true if the budget should post a ledger entry given the
	// last posting time and the current time.
	IsDue(lastPosted, now time.Time, startDate core.Date) bool
}

// WeeklyChecker implements ScheduleChecker for weekly budgets.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last posting.
func (WeeklyChecker) IsDue(lastPosted, now time.Time, _ core.Date) bool {
	if lastPosted.IsZero() {
		return true
	}
	daysSince := now.Sub(lastPosted).Hours() / 24
	return daysSince >= 7
}

// BiweeklyChecker implements ScheduleChecker for biweekly budgets.
type BiweeklyChecker struct{}

// IsDue returns true if 14 or more days have passed since the last posting.
func (BiweeklyChecker) IsDue(lastPosted, now time.Time, _ core.Date) bool {
	if lastPosted.IsZero() {
		return true
	}
	daysSince := now.Sub(lastPosted).Hours() / 24
	return daysSince >= 14
}

// MonthlyChecker implements ScheduleChecker for monthly budgets.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the target day.
func (MonthlyChecker) IsDue(lastPosted, now time.Time, startDate core.Date) bool {
	if lastPosted.IsZero() {
		return true
	}

	// Already posted this month?
	if lastPosted.Year() == now.Year() && lastPosted.Month() == now.Month() {
		return false
	}

	// Target day clamps to the last day of short months
	targetDay := startDate.Day()
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}

	return now.Day() >= targetDay
}

// AnnualChecker implements ScheduleChecker for annual budgets.
type AnnualChecker struct{}

// IsDue returns true if we're in a new year and have reached the target month and day.
func (AnnualChecker) IsDue(lastPosted, now time.Time, startDate core.Date) bool {
	if lastPosted.IsZero() {
		return true
	}

	// Already posted this year?
	if lastPosted.Year() == now.Year() {
		return false
	}

	targetMonth := startDate.Month()
	targetDay := startDate.Day()

	if int(now.Month()) < targetMonth {
		return false
	}

	if int(now.Month()) == targetMonth {
		lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if targetDay > lastDayOfMonth {
			targetDay = lastDayOfMonth
		}
		return now.Day() >= targetDay
	}

	// We're past the target month
	return true
}

// scheduleStrategies maps cadences to their corresponding checkers.
// This registry enables O(1) lookup and easy extension for new cadences.
var scheduleStrategies = map[core.Period]ScheduleChecker{
	core.Weekly:   WeeklyChecker{},
	core.Biweekly: BiweeklyChecker{},
	core.Monthly:  MonthlyChecker{},
	core.Annual:   AnnualChecker{},
}

// GetScheduleChecker returns the appropriate checker for a cadence.
// Returns an error if the cadence is not supported.
func GetScheduleChecker(period core.Period) (ScheduleChecker, error) {
	checker, ok := scheduleStrategies[period]
	if !ok {
		return nil, fmt.Errorf("unknown period: %s", period)
	}
	return checker, nil
}

// RegisterScheduleChecker allows registering custom checkers for new cadences.
// This supports the Open/Closed principle by allowing extension without modification.
func RegisterScheduleChecker(period core.Period, checker ScheduleChecker) {
	scheduleStrategies[period] = checker
}
