// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// IntQuery parses a query-string integer. An empty string yields def; the
// second result is false when s is present but not a base-10 int, so the
// caller can reject it instead of silently substituting def.
//
// Example:
//
//	n, _ := utils.IntQuery("42", 1) // 42, true
//	n, _ = utils.IntQuery("", 20)   // 20, true
//	_, ok := utils.IntQuery("x", 1) // ok == false
func IntQuery(s string, def int) (int, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TotalPages returns how many pages of size pageSize are needed for total
// items. It is zero when there are no items or pageSize is not positive.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
