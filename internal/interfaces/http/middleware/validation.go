package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tbeauty/backend/internal/domain/inventory"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the gin validator: JSON (or form) tag names in
// errors plus the enum tags used by request DTOs.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	enums := map[string]func(string) bool{
		"order_status":   func(s string) bool { return order.Status(s).IsValid() },
		"location":       func(s string) bool { return inventory.Location(s).IsValid() },
		"payment_method": func(s string) bool { return payment.Method(s).IsValid() },
	}
	for tag, valid := range enums {
		valid := valid
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// ValidationDetails converts validator errors into field details. It reports
// false when err is not a validation failure.
func ValidationDetails(err error) ([]dto.ValidationDetail, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:  fieldPath(e),
			Reason: validationReason(e),
		})
	}
	return details, true
}

// ValidationMessage joins details as "<field> is <reason>"
func ValidationMessage(details []dto.ValidationDetail) string {
	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = d.Field + " is " + d.Reason
	}
	return strings.Join(parts, ", ")
}

// fieldPath drops the struct name prefix: "CreateOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationReason(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required"
	case "email":
		return "not a valid email"
	case "min", "gte":
		if e.Kind() == reflect.String {
			return "shorter than " + e.Param() + " characters"
		}
		return "less than " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String {
			return "longer than " + e.Param() + " characters"
		}
		return "greater than " + e.Param()
	case "uuid":
		return "not a valid UUID"
	case "oneof":
		return "not one of: " + e.Param()
	case "datetime":
		return "not a " + e.Param() + " date"
	case "order_status":
		return "not a valid order status"
	case "location":
		return "not a valid location"
	case "payment_method":
		return "not a valid payment method"
	default:
		return "invalid"
	}
}
