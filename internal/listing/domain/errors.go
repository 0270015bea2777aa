package domain

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrForbidden          = errors.New("user not authorized to perform this action")
	ErrInvalidListingData = errors.New("invalid listing data")
	ErrDuplicateFavorite  = errors.New("favorite already exists")
	ErrFavoriteNotFound   = errors.New("favorite not found")
	ErrInvalidStatus      = errors.New("unknown listing status")
)
