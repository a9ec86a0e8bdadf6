package services

import "errors"

var (
	ErrFightNotFound      = errors.New("fight not found")
	ErrFightAlreadyStart  = errors.New("fight already started")
	ErrFightCompleted     = errors.New("fight already completed")
	ErrFightNotStarted    = errors.New("fight hasn't started")
	ErrFightAlreadyEnded  = errors.New("fight already ended")
	ErrAnotherFightActive = errors.New("another fight is in progress")
	ErrFightLocked        = errors.New("fight can no longer be modified")
	ErrPositionLocked     = errors.New("position is inside the locked part of the schedule")
	ErrInvalidNumber      = errors.New("invalid fight number")
	ErrInvalidFight       = errors.New("invalid fight")
	ErrInvalidStartTime   = errors.New("invalid time format")
	ErrInvalidImport      = errors.New("invalid import file")
)
