package database

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrCarNotFound     = errors.New("car not found")
	ErrBayNotFound     = errors.New("bay not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrMemberOverlap: участник уже занят в этом окне (в любой машине)
	ErrMemberOverlap = errors.New("member has a conflicting booking")
	// ErrCarOverlap: машина уже забронирована в этом окне
	ErrCarOverlap = errors.New("car has a conflicting booking")
)

// IsBusy reports whether err is a SQLite busy/locked failure, i.e. a
// serialization abort the caller may retry.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// IsConstraint reports whether err is a constraint violation (unknown
// foreign key, duplicate unique value).
func IsConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
