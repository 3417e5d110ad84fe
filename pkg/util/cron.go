package util

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Standard five-field format (minute, hour, day, month, weekday).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextCronTime returns the next occurrence of cronExpr strictly after from, in UTC.
func NextCronTime(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule.Next(from.UTC()), nil
}

// ValidateCronExpr checks if a cron expression is valid.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// CronDue reports whether a job on cronExpr that last ran at last should run
// again at now. A zero last time is always due.
func CronDue(cronExpr string, last, now time.Time) (bool, error) {
	if last.IsZero() {
		if err := ValidateCronExpr(cronExpr); err != nil {
			return false, err
		}
		return true, nil
	}
	next, err := NextCronTime(cronExpr, last)
	if err != nil {
		return false, err
	}
	return !next.After(now.UTC()), nil
}
