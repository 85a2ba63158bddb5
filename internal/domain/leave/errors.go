package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveNotFound         = errors.New("leave application not found")
	ErrLeaveAlreadyExists    = errors.New("a leave application already exists for this date")
	ErrLeaveAlreadyProcessed = errors.New("leave application already processed")
	ErrLeaveNotDeletable     = errors.New("only denied leave applications can be deleted")
	ErrLeaveOnWeekend        = errors.New("leave cannot be requested on a weekend")
	ErrLeaveOnHoliday        = errors.New("leave cannot be requested on a holiday")
	ErrInternsOnly           = errors.New("only interns can apply for leave")
)

// HolidayError names the holiday that blocked an application.
type HolidayError struct {
	Name string
}

func (e *HolidayError) Error() string {
	return fmt.Sprintf("%s: %s", ErrLeaveOnHoliday.Error(), e.Name)
}

func (e *HolidayError) Is(target error) bool {
	return target == ErrLeaveOnHoliday
}
