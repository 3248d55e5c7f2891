package service

import (
	"context"
	"fmt"
	"sort"

	"crmbridge/internal/repository"
)

type takenFunc func(ctx context.Context, column repository.Column, value string, excludeID uint) (bool, error)

// checkUnique reports ErrUniquenessViolation for the first set column whose
// value another record of the same kind already holds.
func checkUnique(ctx context.Context, taken takenFunc, id uint, kind string, values map[repository.Column]*string) error {
	columns := make([]repository.Column, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })

	for _, column := range columns {
		value := values[column]
		if value == nil {
			continue
		}
		ok, err := taken(ctx, column, *value, id)
		if err != nil {
			return fmt.Errorf("check %s %s: %w", kind, column, err)
		}
		if ok {
			return uniquenessError("%s with %s %q already exists", kind, column, *value)
		}
	}
	return nil
}
