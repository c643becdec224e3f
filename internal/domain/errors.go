package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMemberNotFound = errors.New("member not found")

	ErrNotHost          = errors.New("host authority required")
	ErrNoDrawPermission = errors.New("draw permission required")

	ErrPasswordRequired = errors.New("room is locked: password required")
	ErrPasswordMismatch = errors.New("wrong room password")
	ErrEmptyPassword    = errors.New("lock password must not be empty")

	ErrUnknownDrawingKind = errors.New("unknown drawing kind")
)
