package services

import "errors"

var (
	ErrDharmaLimitReached = errors.New("dharma limit reached")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrNotHydrated        = errors.New("session not loaded yet")
	ErrEmptyResult        = errors.New("server returned no data")
)
