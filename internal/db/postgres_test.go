package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/db/migrations"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_blogs.sql",
		"00003_create_comments.sql",
	}, files)

	users, err := fs.ReadFile(migrations.Migrations, "00001_create_users.sql")
	require.NoError(t, err)
	for _, constraint := range []string{"users_email_key", "users_username_key", "users_phone_key", "users_ktu_id_key"} {
		assert.Contains(t, string(users), constraint)
	}
}

func TestRunMigrations(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), sqlDB))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err = RunMigrations(context.Background(), sqlDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run migrations")
}
