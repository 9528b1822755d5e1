package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositive checks if an amount is positive
func ValidatePositive(value decimal.Decimal, fieldName string) error {
	if !value.IsPositive() {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidatePhoneNumber checks the phone number used for the mobile money prompt
func ValidatePhoneNumber(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return NewValidationError("phone number is required")
	}
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 9 || len(digits) > 15 {
		return NewValidationError("phone number must have 9 to 15 digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return NewValidationError("phone number must contain only digits")
		}
	}
	return nil
}
