package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row-locking clause on dialects that support it. The
// sqlite dialect used in tests has a single writer and no FOR UPDATE syntax.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// MySQL reports "Duplicate entry", sqlite "UNIQUE constraint failed".
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
