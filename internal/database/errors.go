package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ViolationKind classifies a constraint failure reported by the store.
type ViolationKind int

const (
	UniqueViolation ViolationKind = iota + 1
	ForeignKeyViolation
	CheckViolation
)

// Violation describes a rejected write. Constraint holds the postgres
// constraint name, or the sqlite message detail (column list or check name).
type Violation struct {
	Kind       ViolationKind
	Constraint string
}

// Mentions reports whether the violated constraint refers to name.
func (v Violation) Mentions(name string) bool {
	return strings.Contains(v.Constraint, name)
}

// postgres SQLSTATE codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// Classify inspects err for a constraint violation from postgres (lib/pq) or
// sqlite. ok is false for any other error.
func Classify(err error) (v Violation, ok bool) {
	if err == nil {
		return Violation{}, false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return Violation{Kind: UniqueViolation, Constraint: pqErr.Constraint}, true
		case pqForeignKeyViolation:
			return Violation{Kind: ForeignKeyViolation, Constraint: pqErr.Constraint}, true
		case pqCheckViolation:
			return Violation{Kind: CheckViolation, Constraint: pqErr.Constraint}, true
		}
		return Violation{}, false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		detail := liteErr.Error()
		if i := strings.Index(detail, ": "); i >= 0 {
			detail = detail[i+2:]
		}
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return Violation{Kind: UniqueViolation, Constraint: detail}, true
		case sqlite3.ErrConstraintForeignKey:
			return Violation{Kind: ForeignKeyViolation, Constraint: detail}, true
		case sqlite3.ErrConstraintCheck:
			return Violation{Kind: CheckViolation, Constraint: detail}, true
		}
		return Violation{}, false
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Violation{Kind: UniqueViolation}, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Violation{Kind: ForeignKeyViolation}, true
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return Violation{Kind: CheckViolation}, true
	}
	return Violation{}, false
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	v, ok := Classify(err)
	return ok && v.Kind == UniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	v, ok := Classify(err)
	return ok && v.Kind == ForeignKeyViolation
}

// IsCheckViolation reports whether err is a check constraint failure.
func IsCheckViolation(err error) bool {
	v, ok := Classify(err)
	return ok && v.Kind == CheckViolation
}
