package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// fieldErrors collects per-field messages for one operation.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// structFields runs the struct tags of v and records every failure.
func (f fieldErrors) structFields(v interface{}) {
	err := validatorInstance().Struct(v)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		f.add("_", err.Error())
		return
	}
	for _, fe := range ve {
		f.add(fe.Field(), tagMessage(fe))
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "url":
		return "must be a valid url"
	case "len":
		return "must be " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}

// calendarDate drops the time of day, keeping the day as seen in t's own
// zone so an offset timestamp stays on the calendar day the client sent.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
