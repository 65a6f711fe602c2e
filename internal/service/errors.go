package service

import "errors"

var (
	ErrCandidateFetchFailed = errors.New("candidate fetch failed")
	ErrInvalidInput         = errors.New("invalid input")
)
