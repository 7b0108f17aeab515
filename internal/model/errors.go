package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Not found errors
	ErrUserNotFound = errors.New("user not found")
	ErrGameNotFound = errors.New("game not found")

	// Conflict errors
	ErrHandleExists = errors.New("handle already exists")
	ErrOwnGame      = errors.New("cannot join your own game")

	// State errors
	ErrGameNotOpen       = errors.New("game is not open")
	ErrGameNotInProgress = errors.New("game is not in progress")

	// Turn errors
	ErrNotYourTurn = errors.New("not this player's turn")
)
