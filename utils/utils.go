// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

func ToPtr[T any](v T) *T {
	return &v
}

// ParseInt32List parses a comma-separated id list ("1, 2,3"). Empty
// input yields an empty slice, not an error.
func ParseInt32List(s string) ([]int32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", p, err)
		}
		ids = append(ids, int32(v))
	}
	return ids, nil
}

// ParseInt64List parses a comma-separated list of 64-bit ids.
func ParseInt64List(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", p, err)
		}
		ids = append(ids, v)
	}
	return ids, nil
}

// HasRealIDs reports whether the list names at least one real id, i.e.
// it is non-empty and not solely the -1 sentinel.
func HasRealIDs(ids []int32) bool {
	for _, id := range ids {
		if id != -1 {
			return true
		}
	}
	return false
}
