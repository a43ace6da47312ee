package entities

import "errors"

var (
	ErrDrawingNotFound    = errors.New("drawing not found")
	ErrRosterLocked       = errors.New("drawing has already been rolled")
	ErrAlreadyResolved    = errors.New("drawing already resolved")
	ErrNotDue             = errors.New("drawing is not due yet")
	ErrInvalidWinnerCount = errors.New("winner count must be at least 1")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrEmptyPrize         = errors.New("prize name cannot be empty")
	ErrGateNotFound       = errors.New("gate not found")
	ErrGateExists         = errors.New("a gate already exists for this message")
	ErrEmptyRequirements  = errors.New("gate requires at least one role")
	ErrTemplateNotFound   = errors.New("gate template not found")
	ErrTemplateExists     = errors.New("gate template already exists")
	ErrAliasTaken         = errors.New("alias is already in use")
	ErrUnknownRequirement = errors.New("unknown requirement token")
	ErrInvalidTemplateKey = errors.New("template keys and aliases cannot be numeric or empty")
)
