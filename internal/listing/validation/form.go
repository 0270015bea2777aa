package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/bazarly/listing-service/internal/listing/domain"
)

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4000
)

// ValidateForm checks the fixed part of a listing submission: title (after
// the dynamic-title fallback), description and price. Returns an empty map
// when everything passes.
func ValidateForm(title, description string, price int64, priceSet bool) map[string]string {
	errs := make(map[string]string)

	title = strings.TrimSpace(title)
	if title == "" {
		errs["title"] = msgRequired
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		errs["title"] = "title must not exceed 256 characters"
	}

	description = strings.TrimSpace(description)
	if description == "" {
		errs["description"] = msgRequired
	} else if utf8.RuneCountInString(description) > maxDescriptionLength {
		errs["description"] = "description must not exceed 4000 characters"
	}

	if !priceSet {
		errs["price"] = msgRequired
	} else if price <= 0 {
		errs["price"] = "price must be a positive number"
	}

	return errs
}

// ValidateLocation checks the required parts of a listing location.
func ValidateLocation(loc domain.Location) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(loc.Address) == "" {
		errs["address"] = msgRequired
	}
	if strings.TrimSpace(loc.FullAddress) == "" {
		errs["full_address"] = msgRequired
	}
	if strings.TrimSpace(loc.Country) == "" {
		errs["country"] = msgRequired
	}
	return errs
}

// ValidateCommunication requires at least one enabled contact channel.
func ValidateCommunication(byPhone, byMessage bool) map[string]string {
	if !byPhone && !byMessage {
		return map[string]string{"communication": "at least one contact method must be selected"}
	}
	return nil
}
