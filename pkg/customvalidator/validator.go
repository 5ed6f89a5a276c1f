package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"institute-system/pkg/constants"
)

// RegisterCustomValidations регистрирует кастомные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("priority_level", isPriorityLevel); err != nil {
		return err
	}
	if err := v.RegisterValidation("role_code", isRoleCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

func isPriorityLevel(fl validator.FieldLevel) bool {
	return constants.IsAllowedPriority(fl.Field().String())
}

// Коды ролей — латиница в нижнем регистре с подчёркиваниями.
func isRoleCode(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[a-z][a-z_]{1,63}$`)
	return re.MatchString(fl.Field().String())
}
