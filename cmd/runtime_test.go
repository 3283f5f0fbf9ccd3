package cmd

import (
	"context"
	"testing"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/store/memory"
	"catalog-sync/core/store/sqlstore"
	"catalog-sync/feature/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, database.Config{Driver: database.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)

	st, err = openStore(ctx, database.Config{Driver: database.DriverSQLite, Name: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, st)

	_, err = openStore(ctx, database.Config{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenSnapshots(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    any
		wantErr bool
	}{
		{"Dir", snapshot.SourceDir, &snapshot.DirProvider{}, false},
		{"Storage", snapshot.SourceStorage, &snapshot.StorageProvider{}, false},
		{"Publisher", publisher.SourceName, &publisher.Provider{}, false},
		{"Unknown", "ftp", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Snapshot.Source = tt.source
			cfg.Storage.Endpoint = "localhost:9000"
			p, err := openSnapshots(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}
