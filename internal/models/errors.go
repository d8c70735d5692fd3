package models

import "errors"

// Validation errors shared across models.
var (
	ErrNameRequired      = errors.New("name is required")
	ErrURLRequired       = errors.New("url is required")
	ErrInvalidURL        = errors.New("invalid url")
	ErrInvalidSourceType = errors.New("invalid source type")
	ErrXtreamCredentialsRequired = errors.New("xtream sources require username and password")
	ErrStalkerMACRequired        = errors.New("stalker sources require a MAC address")
)
