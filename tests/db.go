package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/storage/database"
)

// NewTestDBConfig returns the test config pointed at the database described by the TEST_DB_* variables.
// ok is false when TEST_DB_HOST is unset.
func NewTestDBConfig() (conf *core.Config, ok bool) {
	v := viper.New()
	v.SetEnvPrefix("TEST_DB")
	v.AutomaticEnv()
	v.SetDefault("port", 5432)
	v.SetDefault("user", "postgres")
	v.SetDefault("password", "postgres")
	v.SetDefault("name", "quizmaster_test")
	v.SetDefault("disableTLS", true)

	conf = core.NewTestConfig()
	if v.GetString("host") == "" {
		return conf, false
	}
	conf.Database = core.DatabaseConfig{
		Engine:        "postgres",
		Host:          v.GetString("host"),
		Port:          v.GetInt("port"),
		User:          v.GetString("user"),
		Password:      v.GetString("password"),
		AdminUser:     v.GetString("adminUser"),
		AdminPassword: v.GetString("adminPassword"),
		Name:          v.GetString("name"),
		DisableTLS:    v.GetBool("disableTLS"),
	}
	return conf, true
}

// OpenDB opens, migrates and empties the Postgres test database. The test is skipped when none is configured.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf, ok := NewTestDBConfig()
	if !ok {
		t.Skip("TEST_DB_HOST not set: skipping Postgres tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, database.CreateIfNotExist(ctx, conf), "CreateIfNotExist()")
	db, err := database.Open(ctx, conf)
	require.NoError(t, err, "Open()")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateUp(ctx, db), "MigrateUp()")

	FlushDB(t, db)
	return db
}

// FlushDB deletes every row and resets the id sequences.
func FlushDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec("TRUNCATE users, subjects, chapters, quizzes, questions, scores RESTART IDENTITY CASCADE")
	require.NoError(t, err, "FlushDB()")
}
