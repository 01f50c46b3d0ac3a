// Package goslin normalizes raw lipid names with the goslin command line
// parser and reads its tab separated output into lipid records.
package goslin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"lora/adapters/excel"
	"lora/domain/core"
	"lora/domain/lipid"
	"lora/internal"
	"lora/ports"
)

// inputFile is the name list handed to the parser inside the work dir.
const inputFile = "goslin_in_data.txt"

// CommandRunner runs a command and returns its standard output and error.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Config locates the parser.
type Config struct {
	JavaBin string
	JarPath string
	Timeout time.Duration
}

// Normalizer implements ports.LipidNormalizer over the goslin jar.
type Normalizer struct {
	config Config
	run    CommandRunner
	reader *excel.DataReader
	logger *internal.Logger
}

var _ ports.LipidNormalizer = (*Normalizer)(nil)

// NewNormalizer creates a normalizer. A nil runner uses ExecRunner.
func NewNormalizer(config Config, run CommandRunner, logger *internal.Logger) *Normalizer {
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.JavaBin == "" {
		config.JavaBin = "java"
	}
	return &Normalizer{
		config: config,
		run:    run,
		reader: excel.NewDataReader(logger),
		logger: logger.With("goslin"),
	}
}

// Args builds the parser command line. The default LIPID grammar is the
// parser's own default and is not passed.
func (n *Normalizer) Args(input, grammar string) []string {
	args := []string{"-jar", n.config.JarPath, "-f", input}
	if grammar != "" && !strings.EqualFold(grammar, ports.GrammarLipid) {
		args = append(args, "-g", strings.ToUpper(grammar))
	}
	return args
}

// Normalize writes the prepared names to a work dir, runs the parser and
// converts its output.
func (n *Normalizer) Normalize(ctx context.Context, rawNames []string, grammar string) ([]lipid.Record, error) {
	if n.config.JarPath == "" {
		return nil, fmt.Errorf("%w: no parser jar configured", core.ErrNormalizerUnavailable)
	}
	names := lipid.PrepareRawNames(rawNames)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no lipid names to normalize", core.ErrEmptyInput)
	}

	dir, err := os.MkdirTemp("", "lora-goslin-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, inputFile)
	if err := os.WriteFile(input, []byte(strings.Join(names, "\n")+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write names: %w", err)
	}

	if n.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := n.run(ctx, n.config.JavaBin, n.Args(input, grammar)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", core.ErrNormalizerFailed, err, strings.TrimSpace(string(stderr)))
	}

	data, err := n.reader.Read(bytes.NewReader(stdout), excel.FormatTSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNormalizerFailed, err)
	}
	records, err := data.Records()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNormalizerFailed, err)
	}
	n.logger.Info("normalized %d names into %d records in %s", len(names), len(records), time.Since(start).Round(time.Millisecond))
	return records, nil
}
