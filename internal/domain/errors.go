package domain

import "errors"

// Domain errors
var (
	ErrNotConnected     = errors.New("not connected to server")
	ErrMalformedMessage = errors.New("malformed message")
	ErrInvalidEndpoint  = errors.New("invalid server endpoint")
)
