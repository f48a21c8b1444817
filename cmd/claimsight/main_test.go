package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/app"
	_ "github.com/claimsight/claimsight/internal/testing/guard"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestServeSkipsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	_, err := execute(t, serveCmd())
	assert.NoError(t, err)
}

func TestDatasetValidateExitCodes(t *testing.T) {
	out, err := execute(t, datasetCmd(), "validate", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"ok":true`)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trends":{"x":{}}}`), 0o600))
	_, err = execute(t, datasetCmd(), "validate", "--file", path)
	var code exitCode
	require.True(t, errors.As(err, &code))
	assert.Equal(t, exitCode(10), code)
}

func TestDatasetChecksumCommand(t *testing.T) {
	out, err := execute(t, datasetCmd(), "checksum")
	require.NoError(t, err)
	assert.Len(t, out, 65)
}

func TestPublishRequiresDatabase(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	_, err := execute(t, datasetCmd(), "publish")
	var code exitCode
	require.True(t, errors.As(err, &code))
	assert.Equal(t, exitCode(1), code)
}

func TestExitWith(t *testing.T) {
	assert.NoError(t, exitWith(0))
	assert.EqualError(t, exitWith(10), "exit status 10")
}
