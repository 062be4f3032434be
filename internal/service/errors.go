package service

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrMovieNotFound      = errors.New("movie not found")
)
