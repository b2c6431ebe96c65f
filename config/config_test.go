package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-assistant/config"
)

func newViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(newViper())

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.SourceFiles, cfg.Source)
	assert.Equal(t, "Final Loan Policy.txt", cfg.Policy.Path)
	assert.Equal(t, "EmployeeList -YOC.xlsx", cfg.Roster.Path)
	assert.Equal(t, "loanbot.db", cfg.Store.Path)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
}

func TestLoad_FileAndEnv(t *testing.T) {
	// GIVEN: a config file and an env override
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: SQLite
server:
  port: 9000
store:
  path: /tmp/x.db
chat:
  bands:
    repayment_percent: 30
`), 0o644))
	t.Setenv("LOANBOT_SERVER_PORT", "9100")

	v := newViper()
	require.NoError(t, config.ReadFile(v, path))
	cfg, err := config.Load(v)

	// THEN: env beats file, file beats defaults
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, config.SourceSQLite, cfg.Source)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	assert.EqualValues(t, 30, cfg.Chat.Bands["repayment_percent"])
}

func TestReadFile_MissingDefaultIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.NoError(t, config.ReadFile(newViper(), ""))
}

func TestLoad_Validation(t *testing.T) {
	v := newViper()
	v.Set("source", "ftp")
	_, err := config.Load(v)
	assert.ErrorContains(t, err, "source must be")

	v = newViper()
	v.Set("server.port", 70000)
	_, err = config.Load(v)
	assert.ErrorContains(t, err, "out of range")
}
