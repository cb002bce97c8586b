package db

import "strings"

// IsUniqueViolation reports whether the provided error references a sqlite
// unique constraint. When indexName is provided, the helper looks for the
// index text in the error message.
func IsUniqueViolation(err error, indexName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if indexName != "" {
		return strings.Contains(msg, indexName)
	}
	return strings.Contains(msg, "UNIQUE constraint failed")
}
