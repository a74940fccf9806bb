package model

import "errors"

var (
	// ErrInvalidInput reports empty text, an empty key or a non-positive length.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasibleLength reports a key length longer than the text.
	ErrInfeasibleLength = errors.New("key length exceeds text length")
)
