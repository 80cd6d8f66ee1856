package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

var constraints = map[string]string{
	"users_email_key": "email",
	"users_phone_key": "phone",
}

func TestPostgresDuplicateField(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"})

	field, ok := PostgresDuplicateField(err, constraints)
	assert.True(t, ok)
	assert.Equal(t, "phone", field)

	field, ok = PostgresDuplicateField(&pgconn.PgError{Code: "23505", ConstraintName: "other"}, constraints)
	assert.True(t, ok)
	assert.Empty(t, field)

	_, ok = PostgresDuplicateField(&pgconn.PgError{Code: "23503"}, constraints)
	assert.False(t, ok)

	_, ok = PostgresDuplicateField(errors.New("boom"), constraints)
	assert.False(t, ok)
}

func TestIsInvalidInput(t *testing.T) {
	err := fmt.Errorf("find blog: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsInvalidInput(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsInvalidInput(errors.New("boom")))
}

func TestMongoDuplicateField(t *testing.T) {
	indexes := map[string]string{"email_1": "email", "ktu_id_1": "ktu_id"}

	err := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: college_blog.users index: ktu_id_1 dup key: { ktu_id: "IDK1" }`,
	}}}

	field, ok := MongoDuplicateField(err, indexes)
	assert.True(t, ok)
	assert.Equal(t, "ktu_id", field)

	_, ok = MongoDuplicateField(errors.New("E11000 but not a driver error"), indexes)
	assert.False(t, ok)
}
