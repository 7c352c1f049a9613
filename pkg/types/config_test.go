package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "mysql", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:   "sqlite with journal",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data", Journal: true},
		},
		{
			name:    "postgres without dsn returns ErrDSNEmpty",
			config:  Config{Backend: BackendPostgres},
			wantErr: ErrDSNEmpty,
		},
		{
			name:   "postgres with dsn",
			config: Config{Backend: BackendPostgres, DSN: "postgres://localhost/strata"},
		},
		{
			name:    "postgres rejects journal",
			config:  Config{Backend: BackendPostgres, DSN: "postgres://localhost/strata", Journal: true},
			wantErr: ErrJournalBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidatePropertyName(t *testing.T) {
	for _, name := range []string{"status", "price_2", "a"} {
		assert.NoError(t, ValidatePropertyName(name), name)
	}
	for _, name := range []string{"", "Status", "2price", "has space", "dash-ed"} {
		assert.ErrorIs(t, ValidatePropertyName(name), ErrInvalidName, name)
	}
}
