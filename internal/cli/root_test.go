package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/services"
)

const memoryConfig = `
storage:
  driver: memory
jwt:
  secret: cli-secret
logging:
  level: error
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(memoryConfig), 0o600))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", path}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestMigrate_MemoryDriver(t *testing.T) {
	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "memory storage has no schema to migrate")
}

func TestSeedCatalog(t *testing.T) {
	out, err := run(t, "seed-catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded")
	assert.Contains(t, out, " attributes")
	assert.NotEmpty(t, services.AttributeCatalog())
}

func TestCreateAccount(t *testing.T) {
	out, err := run(t, "create-account", "--email", "Dean@Uni.edu", "--role", "staff")
	require.NoError(t, err)
	assert.Contains(t, out, "created STAFF dean@uni.edu")
	assert.Contains(t, out, "temporary password: ")

	out, err = run(t, "create-account", "--email", "p@uni.edu", "--role", "PARENT", "--password", "long-enough-1")
	require.NoError(t, err)
	assert.NotContains(t, out, "temporary password")
}

func TestCreateAccount_Errors(t *testing.T) {
	_, err := run(t, "create-account", "--email", "x@uni.edu", "--role", "JANITOR")
	assert.Error(t, err)

	_, err = run(t, "create-account", "--role", "STAFF")
	assert.Error(t, err, "email flag is required")

	_, err = run(t, "create-account", "--email", "x@uni.edu", "--entity-id", "missing")
	assert.Error(t, err)
}

func TestAttributes_Empty(t *testing.T) {
	out, err := run(t, "attributes", "--entity-type", "student")
	require.NoError(t, err)
	assert.Contains(t, out, "no attributes registered")
}
