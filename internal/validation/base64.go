package validation

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string holds standard base64-encoded data. Empty
// strings pass so Required stays responsible for presence checks.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" {
			return true
		}
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
)
