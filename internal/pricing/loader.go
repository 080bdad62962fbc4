package pricing

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"b2b-quote/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped price list files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based price list loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "pricing-loader").Logger(),
	}
}

// Load reads a gzipped price list file.
// The file is expected to contain one JSON-encoded VolumePricing per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.VolumePricing, error) {
	l.logger.Info().Str("file", filePath).Msg("loading pricing file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open pricing file")
		return nil, fmt.Errorf("failed to open pricing file %s: %w", filePath, err)
	}
	defer file.Close()

	entries, err := decodeEntries(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read pricing file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("entries_loaded", len(entries)).
		Msg("pricing file loaded successfully")

	return entries, nil
}

// decodeEntries reads gzipped JSON lines from r and validates every entry.
func decodeEntries(ctx context.Context, r io.Reader, source string) ([]model.VolumePricing, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []model.VolumePricing
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry model.VolumePricing
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("%s line %d: invalid JSON: %w", source, lineNo, err)
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading pricing file %s: %w", source, err)
	}

	return entries, nil
}
