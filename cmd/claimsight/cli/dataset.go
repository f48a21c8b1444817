package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/claimsight/claimsight/internal/dataset"
)

// Exit codes shared by the dataset commands.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitInvalid = 10
)

// Publisher stores a validated document under a snapshot name and returns
// the resulting store.
type Publisher interface {
	Publish(ctx context.Context, name string, raw []byte) (*dataset.Store, error)
}

// DatasetCLI validates, fingerprints and publishes dataset documents.
type DatasetCLI struct {
	readFile func(string) ([]byte, error)
}

// NewDatasetCLI constructs the helper.
func NewDatasetCLI() *DatasetCLI {
	return &DatasetCLI{readFile: os.ReadFile}
}

// DatasetOptions defines flags shared by the dataset commands. An empty File
// means the embedded document.
type DatasetOptions struct {
	File       string
	Name       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ValidateSummary is the JSON output of dataset validate.
type ValidateSummary struct {
	OK       bool            `json:"ok"`
	Name     string          `json:"name,omitempty"`
	Checksum string          `json:"checksum,omitempty"`
	Domains  []string        `json:"domains,omitempty"`
	Issues   []dataset.Issue `json:"issues"`
}

// ValidateCommand builds the document with the server's constructor and
// reports every issue. It returns ExitInvalid when the document is rejected.
func (c *DatasetCLI) ValidateCommand(ctx context.Context, opts DatasetOptions) int {
	opts = withDefaults(opts)
	raw, err := c.read(opts.File)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "dataset validate: %v\n", err)
		return ExitError
	}

	summary := ValidateSummary{Issues: []dataset.Issue{}}
	store, err := dataset.Parse(raw)
	var vErr *dataset.ValidationError
	switch {
	case err == nil:
		summary.OK = true
		summary.Name = store.Name()
		summary.Checksum = store.Checksum()
		summary.Domains = store.Domains()
	case errors.As(err, &vErr):
		summary.Issues = append(summary.Issues, vErr.Issues...)
		sort.SliceStable(summary.Issues, func(i, j int) bool { return summary.Issues[i].Path < summary.Issues[j].Path })
	default:
		summary.Issues = append(summary.Issues, dataset.Issue{Path: "$", Message: err.Error()})
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "dataset validate: encode json: %v\n", err)
			return ExitError
		}
	} else {
		renderValidateHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return ExitInvalid
	}
	return ExitOK
}

// ChecksumCommand prints the blake2b fingerprint of a valid document.
func (c *DatasetCLI) ChecksumCommand(ctx context.Context, opts DatasetOptions) int {
	opts = withDefaults(opts)
	store, code := c.load(opts, "dataset checksum")
	if store == nil {
		return code
	}
	_, _ = fmt.Fprintln(opts.Stdout, store.Checksum())
	return ExitOK
}

// PublishCommand validates the document and hands it to publisher.
func (c *DatasetCLI) PublishCommand(ctx context.Context, publisher Publisher, opts DatasetOptions) int {
	opts = withDefaults(opts)
	if publisher == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "dataset publish: PG_DSN is required")
		return ExitError
	}
	raw, err := c.read(opts.File)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "dataset publish: %v\n", err)
		return ExitError
	}
	store, err := publisher.Publish(ctx, opts.Name, raw)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "dataset publish: %v\n", err)
		var vErr *dataset.ValidationError
		if errors.As(err, &vErr) {
			return ExitInvalid
		}
		return ExitError
	}
	_, _ = fmt.Fprintf(opts.Stdout, "published %s (%s)\n", opts.Name, store.Checksum())
	return ExitOK
}

func (c *DatasetCLI) load(opts DatasetOptions, cmd string) (*dataset.Store, int) {
	raw, err := c.read(opts.File)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "%s: %v\n", cmd, err)
		return nil, ExitError
	}
	store, err := dataset.Parse(raw)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "%s: %v\n", cmd, err)
		return nil, ExitInvalid
	}
	return store, ExitOK
}

func (c *DatasetCLI) read(path string) ([]byte, error) {
	if path == "" {
		return dataset.EmbeddedDocument(), nil
	}
	read := c.readFile
	if read == nil {
		read = os.ReadFile
	}
	return read(path)
}

func withDefaults(opts DatasetOptions) DatasetOptions {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	return opts
}

func renderValidateHuman(out io.Writer, summary ValidateSummary) {
	if summary.OK {
		_, _ = fmt.Fprintf(out, "Dataset %q is valid (%d domains, checksum %s).\n", summary.Name, len(summary.Domains), summary.Checksum)
		return
	}
	_, _ = fmt.Fprintf(out, "%d issue(s) found:\n", len(summary.Issues))
	for _, is := range summary.Issues {
		_, _ = fmt.Fprintf(out, " - %s: %s\n", is.Path, is.Message)
	}
}
