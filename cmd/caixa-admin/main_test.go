package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAdmin(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("CAIXA_DATABASE_DRIVER", "sqlite")
	t.Setenv("CAIXA_DATABASE_PATH", filepath.Join(t.TempDir(), "admin.db"))
}

func TestUserCreateAndList(t *testing.T) {
	useTempDatabase(t)

	out, err := runAdmin(t, "", "user", "create", "--username", "alice", "--password", "pw123")
	require.NoError(t, err)
	assert.Contains(t, out, "User alice created with ID 1")

	// Password from stdin when the flag is omitted.
	out, err = runAdmin(t, "s3cret\n", "user", "create", "--username", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "User bob created with ID 2")

	_, err = runAdmin(t, "", "user", "create", "--username", "alice", "--password", "again")
	assert.Error(t, err)

	out, err = runAdmin(t, "", "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "2 of 2 users")
}

func TestUserCreate_RequiresUsername(t *testing.T) {
	useTempDatabase(t)

	_, err := runAdmin(t, "", "user", "create", "--password", "pw")
	assert.Error(t, err)
}

func TestUserCreate_EmptyPassword(t *testing.T) {
	useTempDatabase(t)

	_, err := runAdmin(t, "", "user", "create", "--username", "carol")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	useTempDatabase(t)

	out, err := runAdmin(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = runAdmin(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestVersion(t *testing.T) {
	out, err := runAdmin(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "caixa-admin dev")
}
