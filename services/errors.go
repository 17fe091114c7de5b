package services

import (
	"errors"
	"fmt"
)

// Shared errors, mapped to HTTP responses by the handlers.
var (
	ErrGroupNameRequired   = errors.New("group name is required")
	ErrGroupNameTooLong    = errors.New("group name must be at most 50 characters")
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupHasSubmissions = errors.New("group cannot be deleted while it has submissions")
)

// QuotaExceededError rejects a submission from a group that has used up its
// attempts. Its message must name the limit and state that only that many
// submissions are allowed; clients key off both.
type QuotaExceededError struct {
	GroupName string
	Limit     int
	Count     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Only %d submissions per group are allowed and group '%s' already submitted %d time(s)",
		e.Limit, e.GroupName, e.Count)
}
