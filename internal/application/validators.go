package application

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerCustomValidators registers configuration-specific validation
// functions with the validator instance.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("urltemplate", validateURLTemplate); err != nil {
		return fmt.Errorf("failed to register urltemplate validator: %w", err)
	}
	return nil
}

// validateURLTemplate accepts an http or https URL containing exactly one
// %d verb, which receives the season year.
func validateURLTemplate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.Count(value, "%") != 1 || strings.Count(value, "%d") != 1 {
		return false
	}

	u, err := url.Parse(fmt.Sprintf(value, 2000))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
