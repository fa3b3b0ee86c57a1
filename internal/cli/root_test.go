package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/realty/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "realty", cmd.Use)
	assert.Contains(t, cmd.Long, "non-overlapping")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"register", "delete", "at", "can-modify", "seed", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "dsn"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, "flag --%s", name)
		assert.Equal(t, "", f.DefValue)
	}
}

func TestRegisterCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	registerCmd, _, err := cmd.Find([]string{"register"})
	require.NoError(t, err)

	for _, name := range []string{"name", "a", "b", "owner", "member"} {
		assert.NotNil(t, registerCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestActorCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"delete", "can-modify"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			require.NotNil(t, sub.Flags().Lookup("at"))
			require.NotNil(t, sub.Flags().Lookup("actor"))

			levelFlag := sub.Flags().Lookup("level")
			require.NotNil(t, levelFlag)
			assert.Equal(t, "0", levelFlag.DefValue)
		})
	}
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	countFlag := seedCmd.Flags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, "1000", countFlag.DefValue)

	extentFlag := seedCmd.Flags().Lookup("extent")
	require.NotNil(t, extentFlag)
	assert.Equal(t, "100", extentFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
	require.NotNil(t, testCmd.Flags().Lookup("golden-dir"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "at", "0,0,0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadConfigDefaults(t *testing.T) {
	opts := &RootOptions{}

	cfg, err := opts.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigDBOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "realty.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: postgres
  dsn: postgres://localhost/realty
limits:
  max_volume: 1000
`), 0644))

	opts := &RootOptions{ConfigPath: path, DBPath: filepath.Join(dir, "override.db")}
	cfg, err := opts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "override.db"), cfg.Storage.Path)
	assert.Equal(t, int64(1000), cfg.Limits.MaxVolume)
}

func TestLoadConfigDSNOverride(t *testing.T) {
	opts := &RootOptions{DBPath: "ignored.db", DSN: "postgres://localhost/realty"}

	cfg, err := opts.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/realty", cfg.Storage.DSN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &RootOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := opts.LoadConfig()
	require.Error(t, err)
}
