package model

import "errors"

var (
	// ErrUpstreamFetch is a failed market-data or exchange-rate request (transport, non-2xx, timeout).
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrMalformedPayload is an upstream response missing an expected numeric field.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrPersistence is a failed write of the price record.
	ErrPersistence = errors.New("persistence failed")
	// ErrUnauthorized is a refresh trigger without valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	ErrPricesNotFound = errors.New("metal prices not found")
	ErrRecordNotFound = errors.New("jewelry record not found")
	ErrAlreadyExists  = errors.New("jewelry record already exists")
	ErrValidation     = errors.New("validation failed")
)
