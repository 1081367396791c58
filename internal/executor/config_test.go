package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbsql.yaml")
	data := `host: db.internal
database: /data/shop.fdb
user: SYSDBA
password: "p@ss:word"
role: APP
charset: UTF8
version: "2.5"
table_prefix: app_
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "2.5", cfg.Version)
	assert.Equal(t, "app_", cfg.TablePrefix)
	assert.Equal(t,
		"SYSDBA:p%40ss%3Aword@db.internal:3050//data/shop.fdb?charset=UTF8&role=APP",
		cfg.DSN())
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	noDB := filepath.Join(dir, "nodb.yaml")
	require.NoError(t, os.WriteFile(noDB, []byte("user: SYSDBA\n"), 0o600))
	_, err = LoadConfig(noDB)
	assert.ErrorIs(t, err, ErrNoDatabase)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [1\n"), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestDSNDefaults(t *testing.T) {
	cfg := Config{Database: "employee", User: "SYSDBA", Password: "masterkey"}
	assert.Equal(t, "SYSDBA:masterkey@localhost:3050/employee", cfg.DSN())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}
