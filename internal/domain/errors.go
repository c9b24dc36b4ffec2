package domain

import "errors"

var (
	// ErrCacheMiss is returned when no fresh pricing exists for a query.
	ErrCacheMiss = errors.New("pricing cache miss")

	// ErrEbayAuthFailure is returned when the OAuth token request fails.
	ErrEbayAuthFailure = errors.New("ebay authentication failed")

	// ErrEbayAPIFailure is returned when an eBay search request fails.
	ErrEbayAPIFailure = errors.New("ebay API request failed")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidPayload is returned when a vision response cannot be parsed.
	ErrInvalidPayload = errors.New("invalid vision payload")

	// ErrItemNotFound is returned when an item does not exist in the store.
	ErrItemNotFound = errors.New("item not found")

	// ErrSaleNotFound is returned when a sale does not exist in the store.
	ErrSaleNotFound = errors.New("sale not found")
)
