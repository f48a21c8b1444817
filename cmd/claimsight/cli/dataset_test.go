package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dataset"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestValidateEmbeddedJSON(t *testing.T) {
	stdout := new(bytes.Buffer)
	code := NewDatasetCLI().ValidateCommand(context.Background(), DatasetOptions{JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code)

	var summary ValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.True(t, summary.OK)
	assert.Contains(t, summary.Domains, "new_patients")
	assert.Len(t, summary.Checksum, 64)
	assert.Empty(t, summary.Issues)
}

func TestValidateReportsIssues(t *testing.T) {
	path := writeDoc(t, `{"name":"bad","trends":{"x":{"yoy":{"labels":["2020"],"sources":{"iqvia":[-1]}}}}}`)
	stdout := new(bytes.Buffer)
	code := NewDatasetCLI().ValidateCommand(context.Background(), DatasetOptions{File: path, Stdout: stdout, Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitInvalid, code)
	assert.Contains(t, stdout.String(), "issue(s) found")
}

func TestValidateMalformedJSON(t *testing.T) {
	path := writeDoc(t, `{`)
	stdout := new(bytes.Buffer)
	code := NewDatasetCLI().ValidateCommand(context.Background(), DatasetOptions{File: path, JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitInvalid, code)
	var summary ValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Len(t, summary.Issues, 1)
	assert.Equal(t, "$", summary.Issues[0].Path)
}

func TestValidateMissingFile(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := NewDatasetCLI().ValidateCommand(context.Background(), DatasetOptions{File: filepath.Join(t.TempDir(), "nope.json"), Stdout: new(bytes.Buffer), Stderr: stderr})
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr.String(), "dataset validate")
}

func TestChecksumMatchesStore(t *testing.T) {
	store, err := dataset.Embedded()
	require.NoError(t, err)
	stdout := new(bytes.Buffer)
	code := NewDatasetCLI().ChecksumCommand(context.Background(), DatasetOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code)
	assert.Equal(t, store.Checksum(), strings.TrimSpace(stdout.String()))
}

type stubPublisher struct {
	name string
	err  error
}

func (s *stubPublisher) Publish(ctx context.Context, name string, raw []byte) (*dataset.Store, error) {
	s.name = name
	if s.err != nil {
		return nil, s.err
	}
	return dataset.Parse(raw)
}

func TestPublishCommand(t *testing.T) {
	pub := &stubPublisher{}
	stdout := new(bytes.Buffer)
	code := NewDatasetCLI().PublishCommand(context.Background(), pub, DatasetOptions{Name: "q3", Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "q3", pub.name)
	assert.Contains(t, stdout.String(), "published q3")

	code = NewDatasetCLI().PublishCommand(context.Background(), &stubPublisher{err: &dataset.ValidationError{Issues: []dataset.Issue{{Path: "a", Message: "b"}}}}, DatasetOptions{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitInvalid, code)

	code = NewDatasetCLI().PublishCommand(context.Background(), &stubPublisher{err: errors.New("conn refused")}, DatasetOptions{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitError, code)

	code = NewDatasetCLI().PublishCommand(context.Background(), nil, DatasetOptions{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)})
	assert.Equal(t, ExitError, code)
}
