// Package testutil provides shared test helpers for config files and signed
// request identities.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestJWTSecret signs tokens in tests. Any non-empty value works because the
// middleware only checks the signature against the configured secret.
const TestJWTSecret = "test-secret"

// SetupTestConfig creates a minimal config file for testing.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`server:
  port: 8080
  stream_timeout_seconds: 30
database:
  host: localhost
  port: 3306
  database: eduflux_test
  username: eduflux
exports:
  directory: %s
`, filepath.Join(tmpDir, "exports"))

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file plus GROQ_API_KEY and
// EDUFLUX_JWT_SECRET environment variables for tests that require secrets.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	t.Setenv("GROQ_API_KEY", "fake-key-for-testing")
	t.Setenv("EDUFLUX_JWT_SECRET", TestJWTSecret)
	return cfgPath
}
