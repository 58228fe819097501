// Package validation runs field-level checks on inbound request shapes
// before they reach the entity.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"catalog/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. decimal.Decimal fields are handed to the rules
// as their exact string form and compared with the dgt, dlt and dscale
// tags. Field errors are keyed by their json name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("dgt", decimalRule(func(d, p decimal.Decimal) bool { return d.GreaterThan(p) }))
	_ = v.RegisterValidation("dlt", decimalRule(func(d, p decimal.Decimal) bool { return d.LessThan(p) }))
	_ = v.RegisterValidation("dscale", decimalScale)

	return &Validator{validate: v}
}

// Struct validates s and returns an *apperror.ValidationError listing every
// failed field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	verr := &apperror.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

// decimalRule compares the field against the tag parameter without any
// float conversion. A malformed parameter is a programming error.
func decimalRule(cmp func(d, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return cmp(d, decimal.RequireFromString(fl.Param()))
	}
}

// decimalScale limits the number of digits after the decimal point.
// Trailing zeros do not count.
func decimalScale(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		panic(fmt.Sprintf("validation: bad dscale param %q", fl.Param()))
	}
	return d.Equal(d.Truncate(int32(places)))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "dgt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "dlt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "dscale":
		return fmt.Sprintf("%s cannot have more than %s decimal places", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}
