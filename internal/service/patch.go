package service

import (
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"

	"crmbridge/internal/model"
)

// setValue applies a field that may be omitted but never null.
func setValue[T any](field string, dst *T, v nullable.Nullable[T]) error {
	if !v.IsSpecified() {
		return nil
	}
	if v.IsNull() {
		return validationError("%s cannot be null", field)
	}
	val, err := v.Get()
	if err != nil {
		return validationError("%s: %v", field, err)
	}
	*dst = val
	return nil
}

// setOptional applies a nullable field: null clears it, a value replaces it.
func setOptional[T any](dst **T, v nullable.Nullable[T]) {
	if !v.IsSpecified() {
		return
	}
	val, err := v.Get()
	if v.IsNull() || err != nil {
		*dst = nil
		return
	}
	*dst = &val
}

// blankToNil treats an empty or whitespace optional string as absent.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// stamp returns now at the precision timestamps are stored with.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}

// touch returns an updated_at strictly after prev.
func touch(now func() time.Time, prev time.Time) time.Time {
	return model.NextUpdatedAt(stamp(now), prev)
}
