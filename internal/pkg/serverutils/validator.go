package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the first failure
// into a readable message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			return fmt.Errorf("field '%s' failed on the '%s' rule", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
