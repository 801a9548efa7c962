package poolshell

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cases := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"ok": {
			cfg:     Config{MinPoolSize: 1, MaxPoolSize: 3, ReserveSize: 1},
			wantErr: false,
		},
		"negative min": {
			cfg:     Config{MinPoolSize: -1, MaxPoolSize: 3},
			wantErr: true,
		},
		"max below min": {
			cfg:     Config{MinPoolSize: 3, MaxPoolSize: 2},
			wantErr: true,
		},
		"max zero": {
			cfg:     Config{MinPoolSize: 0, MaxPoolSize: 0},
			wantErr: true,
		},
		"reserve exceeds max": {
			cfg:     Config{MinPoolSize: 0, MaxPoolSize: 2, ReserveSize: 3},
			wantErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	const body = `
minPoolSize: 2
maxPoolSize: 5
reserveSize: 1
verbose: true
keepAlive: 30s
startupDeadline: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	want := Config{
		MinPoolSize:     2,
		MaxPoolSize:     5,
		ReserveSize:     1,
		Verbose:         true,
		KeepAlive:       30 * time.Second,
		StartupDeadline: 10 * time.Second,
	}
	assert.Equal(t, want, cfg)
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	body := "minPoolSize: 1\nmaxPoolSize: 1\nkeepAlive: not-a-duration\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
