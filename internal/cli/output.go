package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

// artifactWriteParams describes rendered output to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stats     cloud.Stats
	cacheHit  bool
}

// writeArtifacts writes each format to its own file and prints a summary.
// A single format goes to output as given; several formats share output
// as a base path.
func writeArtifacts(ctx context.Context, p artifactWriteParams) error {
	logger := loggerFromContext(ctx)

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("renderer produced no %s output", format)
		}

		path := basePath(p.output, p.input) + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(data))
		paths = append(paths, path)
	}

	printSuccess("Rendered %d tags", p.stats.Placed)
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats, p.cacheHit)
	warnDegraded(p.stats)
	return nil
}

// nopCloser adds a no-op Close to an io.Writer.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, otherwise creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
