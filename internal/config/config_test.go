package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledgecli/internal/ingest"
)

// chdirTemp runs the test from an empty temp directory so Load only sees
// the config file the test writes.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pledge", cfg.Import.CategoryKeyword)
	assert.Equal(t, "first-file-wins", cfg.Import.MergePolicy)
	require.NoError(t, cfg.validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	chdirTemp(t)

	yaml := "server:\n" +
		"  port: 9090\n" +
		"import:\n" +
		"  category_keyword: tithe\n"
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	// Keys present in the file survive the env pass.
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tithe", cfg.Import.CategoryKeyword)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "Charge", cfg.Import.ChargeColumn)
	assert.Equal(t, "first-file-wins", cfg.Import.MergePolicy)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PLEDGE_IMPORT_CATEGORY_KEYWORD", "offering")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "offering", cfg.Import.CategoryKeyword)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_NoConfigFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestImportConfig_Signature(t *testing.T) {
	sig := Default().Import.Signature()

	assert.Equal(t, "Type", sig.TypeColumn)
	assert.Equal(t, "Charge", sig.ChargeColumn)
	assert.Equal(t, "Account Id", sig.AccountColumn)
	assert.Equal(t, "Birthday", sig.BirthdayColumn)
	assert.Equal(t, "Zip", sig.ZipColumn)
	assert.Contains(t, sig.Optional, "Fund")
}

func TestImportConfig_Policy(t *testing.T) {
	cfg := Default().Import
	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, ingest.FirstFileWins, policy)

	cfg.MergePolicy = "last-file-wins"
	policy, err = cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, ingest.LastFileWins, policy)

	cfg.MergePolicy = "newest"
	_, err = cfg.Policy()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "empty category keyword",
			mutate:  func(c *Config) { c.Import.CategoryKeyword = "" },
			wantErr: "category keyword",
		},
		{
			name:    "missing required column name",
			mutate:  func(c *Config) { c.Import.BirthdayColumn = "" },
			wantErr: "required import columns",
		},
		{
			name:    "bad upload limit",
			mutate:  func(c *Config) { c.Import.MaxUploadBytes = 0 },
			wantErr: "max upload bytes",
		},
		{
			name:    "bad merge policy",
			mutate:  func(c *Config) { c.Import.MergePolicy = "newest" },
			wantErr: "unknown merge policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
