package lists

import (
	"errors"
	"fmt"
)

// User-facing field error vocabulary. The exact wording is load-bearing:
// pages and API clients match on these strings.
const (
	EmptyItemError     = "You can't have an empty list item"
	DuplicateItemError = "You've already got this in your list"
)

var (
	// ErrEmptyItem rejects item text that is empty after trimming.
	ErrEmptyItem = errors.New(EmptyItemError)

	// ErrDuplicateItem rejects an item whose text already exists in the list.
	ErrDuplicateItem = errors.New(DuplicateItemError)

	// ErrListNotFound is returned when a list id does not exist.
	ErrListNotFound = errors.New("list not found")

	// ErrUserNotFound is returned when an email matches no registered user.
	ErrUserNotFound = errors.New("user not found")
)

// UserNotFoundError reports a sharee or owner lookup that matched no
// registered user. Its message is rendered verbatim on the list page.
type UserNotFoundError struct {
	Email string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("User '%s' not found.", e.Email)
}
