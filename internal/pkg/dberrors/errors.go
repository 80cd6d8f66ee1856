// Package dberrors classifies driver errors from the Postgres and MongoDB
// stores.
package dberrors

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// Postgres SQLSTATE codes.
const (
	UniqueViolationCode           = "23505"
	InvalidTextRepresentationCode = "22P02"
)

// IsInvalidInput reports whether Postgres rejected a parameter it could not
// parse, such as a malformed uuid.
func IsInvalidInput(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == InvalidTextRepresentationCode
}

// PostgresDuplicateField returns the field guarded by the violated constraint,
// looked up in constraints (constraint name -> field).
func PostgresDuplicateField(err error, constraints map[string]string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolationCode {
		return "", false
	}
	field, ok := constraints[pgErr.ConstraintName]
	if !ok {
		return "", true
	}
	return field, true
}

var mongoIndexPattern = regexp.MustCompile(`index: (\S+) dup key`)

// MongoDuplicateField returns the field guarded by the violated unique index,
// looked up in indexes (index name -> field).
func MongoDuplicateField(err error, indexes map[string]string) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}

	var we mongo.WriteException
	var cmd mongo.CommandError
	var msg string
	switch {
	case errors.As(err, &we):
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 || e.Code == 12582 {
				msg = e.Message
				break
			}
		}
	case errors.As(err, &cmd):
		msg = cmd.Message
	default:
		msg = err.Error()
	}

	if m := mongoIndexPattern.FindStringSubmatch(msg); m != nil {
		if field, ok := indexes[m[1]]; ok {
			return field, true
		}
	}
	return "", true
}
