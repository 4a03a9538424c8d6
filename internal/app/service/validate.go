package service

import (
	"errors"
	"fmt"
	"strings"

	"chatsql_backend/internal/common"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationError turns the first field error of a failed validation into a
// client facing ErrValidation. messages overrides the text per "Field.tag".
func validationError(err error, messages map[string]string) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return common.NewError(common.ErrValidation, "Invalid input")
	}
	fe := ve[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return common.NewError(common.ErrValidation, msg)
	}
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return common.NewError(common.ErrValidation, fmt.Sprintf("%s is required", field))
	case "max":
		return common.NewError(common.ErrValidation, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "email":
		return common.NewError(common.ErrValidation, fmt.Sprintf("%s must be a valid email address", field))
	default:
		return common.NewError(common.ErrValidation, fmt.Sprintf("%s is invalid", field))
	}
}
