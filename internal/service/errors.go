package service

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrEmptyComment     = errors.New("review comment cannot be empty")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrEmptyListingID   = errors.New("listing id cannot be empty")
	ErrMissingToken     = errors.New("auth response carried no token")
)
