package service

import "errors"

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidSide       = errors.New("invalid order side")
	ErrInvalidQuantity   = errors.New("order quantity must be positive")
	ErrInvalidPrice      = errors.New("order price must be positive")
	ErrBackupUnavailable = errors.New("backup subsystem is not configured")
)
