package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard five-field expressions and descriptors such
// as @hourly or @every 30m.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks that expr is a valid cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
