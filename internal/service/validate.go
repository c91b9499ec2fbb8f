package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) validate(req any) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fieldPath(fe.Namespace())] = rule
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// normalizePhone returns the E.164 form of raw, or "" when raw is blank.
func (s *Service) normalizePhone(field string, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := libphonenumber.Parse(raw, s.phoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(parsed) {
		return "", invalidField(field, "invalid phone number")
	}
	return libphonenumber.Format(parsed, libphonenumber.E164), nil
}

var hundred = decimal.NewFromInt(100)

func checkPercent(field string, value *decimal.Decimal) error {
	if value == nil {
		return nil
	}
	if value.IsNegative() || value.GreaterThan(hundred) {
		return invalidField(field, "%s must be between 0 and 100", field)
	}
	return nil
}

func checkNotNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalidField(field, "%s cannot be negative", field)
	}
	return nil
}

func checkPositive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return invalidField(field, "%s must be greater than zero", field)
	}
	return nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field string, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, invalidField(field, "%s must be a date in YYYY-MM-DD format", field)
}
