package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"integrity-service/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "integrity", cfg.Storage.Bucket)
	assert.Equal(t, "database", cfg.Integrity.Backend)
	assert.Equal(t, 5*time.Second, cfg.Integrity.RefreshPeriod())
	assert.Equal(t, 1000, cfg.Integrity.MaxListedIssues)
	assert.Equal(t, model.ChecksumSpec{Algorithm: "MD5"}, cfg.Integrity.ChecksumSpec())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "INTEGRITY_COLLECTIONS=books=p1,p2\nINTEGRITY_CHECKSUM_MAX_AGE_HOURS=48\nDATABASE_DRIVER=sqlite\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("INTEGRITY_COLLECTIONS")
		os.Unsetenv("INTEGRITY_CHECKSUM_MAX_AGE_HOURS")
		os.Unsetenv("DATABASE_DRIVER")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 48*time.Hour, cfg.Integrity.ChecksumMaxAge())

	cols, err := cfg.Integrity.ParseCollections()
	require.NoError(t, err)
	assert.Equal(t, []model.CollectionConfig{{ID: "books", PillarIDs: []string{"p1", "p2"}}}, cols)
}

func TestParseCollections(t *testing.T) {
	cols, err := Integrity{Collections: " maps = p3 ; books=p1, p2 ;"}.ParseCollections()
	require.NoError(t, err)
	assert.Equal(t, []model.CollectionConfig{
		{ID: "books", PillarIDs: []string{"p1", "p2"}},
		{ID: "maps", PillarIDs: []string{"p3"}},
	}, cols)

	cols, err = Integrity{}.ParseCollections()
	require.NoError(t, err)
	assert.Empty(t, cols)

	for _, raw := range []string{"books", "=p1", "books=", "books=p1;books=p2"} {
		_, err := Integrity{Collections: raw}.ParseCollections()
		assert.Error(t, err, raw)
	}
}
