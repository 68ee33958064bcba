package database

import (
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
)

func TestDSN(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Engine = "postgres"
	conf.Database.Host = "db"
	conf.Database.Port = "5432"
	conf.Database.User = "app"
	conf.Database.Password = "p@ss"
	conf.Database.AdminUser = "root"
	conf.Database.AdminPassword = "secret"

	tests := []struct {
		name       string
		admin      bool
		disableTLS bool
		want       string
	}{
		{name: "app", want: "postgres://app:p%40ss@db:5432/tuition?sslmode=require&timezone=utc"},
		{name: "admin", admin: true, disableTLS: true, want: "postgres://root:secret@db:5432/tuition?sslmode=disable&timezone=utc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Database.DisableTLS = tt.disableTLS
			assert.Equal(t, tt.want, dsn("tuition", tt.admin, conf))
		})
	}
}

func TestRun(t *testing.T) {
	var gotCommand, gotDir string
	var gotArgs []string
	gooseRunFunc = func(command string, _ *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir, gotArgs = command, dir, args
		return nil
	}
	defer func() { gooseRunFunc = goose.Run }()

	require.NoError(t, Run(nil, "down-to", "1"))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, "migrations", gotDir)
	assert.Equal(t, []string{"1"}, gotArgs)

	require.NoError(t, Migrate(nil))
	assert.Equal(t, "up", gotCommand)
}
