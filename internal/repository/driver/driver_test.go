package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "caixa.db"),
	}

	res, err := Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer res.Database.Close()

	require.NoError(t, res.Database.Migrate(ctx))
	require.NoError(t, res.Database.Health(ctx))

	u := domain.NewUser("alice", "hash")
	require.NoError(t, res.Repos.User.Create(ctx, u))
	assert.NotZero(t, u.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}, zerolog.Nop())
	assert.Error(t, err)
}
