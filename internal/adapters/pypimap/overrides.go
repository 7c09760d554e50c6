package pypimap

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/zerr"
)

// LoadOverrides reads the compressed override mapping: a gzip-compressed
// JSON object of conda package name to canonical identifier. A plain JSON
// file is accepted too, so hand-edited tables work without recompression.
// A missing file yields an empty table.
func LoadOverrides(path string) (map[string]string, error) {
	//nolint:gosec // Path is provided by trusted caller
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, zerr.Wrap(err, domain.ErrOverrideReadFailed.Error())
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	var reader io.Reader = f
	if zr, gzErr := gzip.NewReader(f); gzErr == nil {
		defer zr.Close() //nolint:errcheck // Best effort close in defer
		reader = zr
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, zerr.Wrap(err, domain.ErrOverrideReadFailed.Error())
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrOverrideReadFailed.Error())
	}

	overrides := make(map[string]string)
	if len(data) == 0 {
		return overrides, nil
	}
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, zerr.Wrap(err, domain.ErrOverrideReadFailed.Error())
	}
	return overrides, nil
}
