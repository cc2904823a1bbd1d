// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

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
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// MissingFieldsError lists the wire names of required fields absent from a record.
type MissingFieldsError struct {
	Record string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s is missing required field(s): %s", e.Record, strings.Join(e.Fields, ", "))
}

// Validate checks the `validate` tags of a decoded record. Failures of the
// required rule are reported as *MissingFieldsError.
func Validate(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	missing := &MissingFieldsError{Record: recordName(record)}
	var other []string
	for _, fe := range validationErrs {
		if fe.Tag() == "required" {
			missing.Fields = append(missing.Fields, fe.Field())
			continue
		}
		other = append(other, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	if len(other) > 0 {
		return fmt.Errorf("%s is invalid: %s", recordName(record), strings.Join(other, "; "))
	}
	return missing
}

func recordName(record any) string {
	t := reflect.TypeOf(record)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "record"
	}
	return t.Name()
}
