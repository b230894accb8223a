package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct tag validation and folds failures into one
// ValidationError naming the offending json fields.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid("%s", err.Error())
	}
	var missing, bad []string
	for _, fe := range verrs {
		name := fe.Field()
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		bad = append(bad, fmt.Sprintf("%s (%s)", name, describe(fe)))
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if len(bad) > 0 {
		parts = append(parts, "Invalid fields: "+strings.Join(bad, ", "))
	}
	return Invalid("%s", strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "one of " + fe.Param()
	case "gte", "min":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "email":
		return "must be an email"
	}
	return fe.Tag()
}
