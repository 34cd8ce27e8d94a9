package models

import "errors"

var (
	// ErrInvalidInput: empty series or a value that is not a finite number.
	ErrInvalidInput = errors.New("invalid input")
	// ErrLengthMismatch: labels given but not one per value.
	ErrLengthMismatch = errors.New("labels length mismatch")
	// ErrConfiguration: canvas or threshold settings that cannot be used.
	ErrConfiguration = errors.New("invalid configuration")
)

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func IsLengthMismatch(err error) bool { return errors.Is(err, ErrLengthMismatch) }
