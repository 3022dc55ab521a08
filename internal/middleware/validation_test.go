package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Shaped like a checkout address submission.
type addressRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Zip       string  `json:"zip" validate:"required"`
	Size      string  `json:"size" validate:"omitempty,oneof=XS S M L XL"`
	Price     float64 `json:"price" validate:"gte=0,lte=500"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeFirstName bool, includeEmail bool, includeZip bool) bool {
			reqMap := make(map[string]interface{})

			if includeFirstName {
				reqMap["first_name"] = "Jane"
			}
			if includeEmail {
				reqMap["email"] = "jane@example.com"
			}
			if includeZip {
				reqMap["zip"] = "4017"
			}

			allFieldsPresent := includeFirstName && includeEmail && includeZip

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq addressRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			reqMap := map[string]interface{}{
				"first_name": "Jane",
				"email":      "not-an-email",
				"zip":        "4017",
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq addressRequest
			err := DecodeAndValidate(req, &testReq)

			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)

			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(seed int) bool {
			names := []string{"Jane", "John", "Alice", "Bob"}
			sizes := []string{"XS", "S", "M", "L", "XL"}

			if seed < 0 {
				seed = -seed
			}

			reqMap := map[string]interface{}{
				"first_name": names[seed%len(names)],
				"email":      "valid@example.com",
				"zip":        "4017",
				"size":       sizes[seed%len(sizes)],
				"price":      float64(seed % 500),
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq addressRequest
			err := DecodeAndValidate(req, &testReq)

			return err == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SizeEnumValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sizes outside the fixed set are rejected", prop.ForAll(
		func(size string) bool {
			reqMap := map[string]interface{}{
				"first_name": "Jane",
				"email":      "jane@example.com",
				"zip":        "4017",
				"size":       size,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq addressRequest
			err := DecodeAndValidate(req, &testReq)

			switch size {
			case "", "XS", "S", "M", "L", "XL":
				return err == nil
			default:
				return err != nil
			}
		},
		gen.OneConstOf("", "XS", "S", "M", "L", "XL", "XXL", "xs", "medium", "44"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
