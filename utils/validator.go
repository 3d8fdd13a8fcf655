package utils

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - email (basic shape check)
// - httpurl (absolute http/https URL)
// - pwdmin (min length 6)
// - eqfield=OtherField (field equals another field)
// - oneof=a b c (string field is one of the listed values)
// - positive (int field > 0)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				if fv.Kind() == reflect.String && sval == "" {
					return errors.New(field.Name + " is required")
				}
			} else if p == "email" {
				if sval != "" && !reEmail.MatchString(sval) {
					return errors.New(field.Name + " must be a valid email address")
				}
			} else if p == "httpurl" {
				if sval != "" {
					u, err := url.Parse(sval)
					if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
						return errors.New(field.Name + " must be an absolute http(s) URL")
					}
				}
			} else if p == "pwdmin" {
				if len(sval) < 6 {
					return errors.New(field.Name + " must be at least 6 characters")
				}
			} else if strings.HasPrefix(p, "eqfield=") {
				other := strings.TrimPrefix(p, "eqfield=")
				ov := v.FieldByName(other)
				if ov.IsValid() && ov.Kind() == reflect.String && ov.String() != sval {
					return errors.New(field.Name + " does not match " + other)
				}
			} else if strings.HasPrefix(p, "oneof=") {
				allowed := strings.Fields(strings.TrimPrefix(p, "oneof="))
				if sval != "" {
					ok := false
					for _, a := range allowed {
						if a == sval {
							ok = true
							break
						}
					}
					if !ok {
						return errors.New(field.Name + " must be one of: " + strings.Join(allowed, ", "))
					}
				}
			} else if p == "positive" {
				switch fv.Kind() {
				case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
					if fv.Int() <= 0 {
						return errors.New(field.Name + " must be greater than zero")
					}
				case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
					if fv.Uint() == 0 {
						return errors.New(field.Name + " must be greater than zero")
					}
				case reflect.Float32, reflect.Float64:
					if fv.Float() <= 0 {
						return errors.New(field.Name + " must be greater than zero")
					}
				case reflect.String:
					if n, err := strconv.Atoi(sval); err != nil || n <= 0 {
						return errors.New(field.Name + " must be greater than zero")
					}
				}
			}
		}
	}
	return nil
}
