// Package validation holds the pure field rules shared by the checkout and
// reservation forms. Functions return a field-keyed error map and never
// panic on malformed input; the same rules run again at persistence time so
// a bypassed client cannot weaken them.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"restaurant-orders-api/models"
)

// Machine-readable error codes, stable across the API surface.
const (
	CodeRequired           = "Required"
	CodeInvalidEmailFormat = "InvalidEmailFormat"
	CodeInvalidPhoneFormat = "InvalidPhoneFormat"
	CodeDateInPast         = "DateInPast"
	CodeInvalidDateFormat  = "InvalidDateFormat"
	CodeTimeRequired       = "TimeRequired"
	CodeTimeNotAvailable   = "TimeNotAvailable"
	CodePartySizeInvalid   = "PartySizeInvalid"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Accepts optional international prefix and common separators; a bare
	// 5-digit number does not pass.
	phoneRe = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

// Checkout validates the contact fields of a checkout submission.
func Checkout(name, email, phone string) models.FieldErrors {
	errs := models.FieldErrors{}
	requireContact(errs, name, email, phone)
	return errs
}

// Reservation validates a reservation form. now anchors the date-in-past
// check; slots and maxParty come from configuration.
func Reservation(name, email, phone, date, timeSlot string, partySize int, slots []string, maxParty int, now time.Time) models.FieldErrors {
	errs := models.FieldErrors{}
	requireContact(errs, name, email, phone)

	if strings.TrimSpace(date) == "" {
		errs["reservation_date"] = CodeRequired
	} else if d, err := time.Parse("2006-01-02", date); err != nil {
		errs["reservation_date"] = CodeInvalidDateFormat
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if d.Before(today) {
			errs["reservation_date"] = CodeDateInPast
		}
	}

	if strings.TrimSpace(timeSlot) == "" {
		errs["reservation_time"] = CodeTimeRequired
	} else if !slotAllowed(timeSlot, slots) {
		errs["reservation_time"] = CodeTimeNotAvailable
	}

	if partySize < 1 || partySize > maxParty {
		errs["party_size"] = CodePartySizeInvalid
	}
	return errs
}

func requireContact(errs models.FieldErrors, name, email, phone string) {
	if strings.TrimSpace(name) == "" {
		errs["customer_name"] = CodeRequired
	}
	switch {
	case strings.TrimSpace(email) == "":
		errs["customer_email"] = CodeRequired
	case !ValidEmail(email):
		errs["customer_email"] = CodeInvalidEmailFormat
	}
	switch {
	case strings.TrimSpace(phone) == "":
		errs["customer_phone"] = CodeRequired
	case !ValidPhone(phone):
		errs["customer_phone"] = CodeInvalidPhoneFormat
	}
}

func slotAllowed(t string, slots []string) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

// Quantity checks a cart line quantity against the configured ceiling.
func Quantity(qty, max int) error {
	if qty < 0 || qty > max {
		return fmt.Errorf("%w: %d (max %d)", models.ErrQuantityOutOfRange, qty, max)
	}
	return nil
}
