package validator

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

const maxPlayerNameLength = 24

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = validate.RegisterValidation("playername", validatePlayerName)
}

func GetValidator() *validator.Validate {
	return validate
}

// validatePlayerName accepts the empty string (a default name is used) or up to
// maxPlayerNameLength printable characters.
func validatePlayerName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if len([]rune(name)) > maxPlayerNameLength {
		return false
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
