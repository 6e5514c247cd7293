// Package export writes analysis results out of the client: to a local
// directory, or to an S3-compatible bucket when one is configured.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

// Exporter stores one result and returns where it went.
type Exporter interface {
	Export(ctx context.Context, res *models.AnalysisResult) (string, error)
}

// Options selects and configures the exporter. A non-empty S3.Bucket wins
// over Dir.
type Options struct {
	Dir string
	S3  S3Config
}

func New(opts Options) Exporter {
	if opts.S3.Bucket != "" {
		return NewS3Exporter(opts.S3)
	}
	return NewFileExporter(opts.Dir)
}

// ObjectName is the file/object name used for a result id. Characters that
// are unsafe in paths or object keys become '_'.
func ObjectName(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
	return "result-" + safe + ".json"
}

func encode(res *models.AnalysisResult) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("export: nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result %s: %w", res.ID, err)
	}
	return append(b, '\n'), nil
}
