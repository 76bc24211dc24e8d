package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUpstreamFetch indicates that an upstream rate source could not be
// reached, timed out, or answered with a non-success status.
var ErrUpstreamFetch = errors.New("upstream fetch error")

// ErrParse indicates that an upstream responded but its content did not
// match the expected shape (missing fields, unparseable numeric text).
var ErrParse = errors.New("parse error")

// ErrUnknownProvider indicates that a caller named a provider that is not
// registered with the scraper.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrInvalidSelector indicates a live-quote type outside buy/sell/average.
var ErrInvalidSelector = errors.New("invalid selector")
