package service

import "errors"

var (
	// ErrNotFound: el catálogo confirmó que el item no existe y no hay nada en cache.
	ErrNotFound = errors.New("media not found")
	// ErrUpstreamUnavailable: falla transitoria del catálogo sin registro en cache.
	ErrUpstreamUnavailable = errors.New("upstream catalog unavailable")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrInvalidReview      = errors.New("invalid review")
	ErrInvalidInput       = errors.New("invalid input")
)
