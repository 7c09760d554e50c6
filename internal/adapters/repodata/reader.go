// Package repodata materializes channel contents into a package database
// from local channel directories laid out as <channel>/<platform>/repodata.json.
package repodata

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ChannelReader = (*Reader)(nil)

// Reader implements ports.ChannelReader over local channel directories.
// Remote channel transport lives behind a different implementation of the
// same port.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

type repodataFile struct {
	Packages map[string]packageEntry `json:"packages"`
	Pypi     map[string][]pypiEntry  `json:"pypi,omitempty"`
}

type packageEntry struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Build   string   `json:"build"`
	Depends []string `json:"depends"`
}

type pypiEntry struct {
	Version string   `json:"version"`
	Source  string   `json:"source,omitempty"`
	Depends []string `json:"depends,omitempty"`
}

// Read loads every channel's repodata for the requested platforms plus
// noarch. A channel missing a platform directory contributes nothing for
// that platform.
func (r *Reader) Read(ctx context.Context, channels []string, platforms []domain.Platform) (*domain.PackageDatabase, error) {
	db := domain.NewPackageDatabase(channels...)

	subdirs := slices.Clone(platforms)
	if !slices.Contains(subdirs, domain.PlatformNoarch) {
		subdirs = append(subdirs, domain.PlatformNoarch)
	}

	for _, channel := range channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, platform := range subdirs {
			if err := r.readSubdir(db, channel, platform); err != nil {
				return nil, err
			}
		}
	}

	return db, nil
}

func (r *Reader) readSubdir(db *domain.PackageDatabase, channel string, platform domain.Platform) error {
	path := filepath.Join(channelPath(channel), string(platform), "repodata.json")

	//nolint:gosec // Channel paths come from the manifest
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		err = zerr.Wrap(err, domain.ErrChannelReadFailed.Error())
		return zerr.With(err, "channel", channel)
	}

	var file repodataFile
	if err := json.Unmarshal(data, &file); err != nil {
		err = zerr.Wrap(err, domain.ErrChannelReadFailed.Error())
		return zerr.With(err, "channel", channel)
	}

	fileNames := make([]string, 0, len(file.Packages))
	for fileName := range file.Packages {
		fileNames = append(fileNames, fileName)
	}
	slices.Sort(fileNames)

	for _, fileName := range fileNames {
		entry := file.Packages[fileName]
		db.AddConda(platform, domain.CondaRecord{
			Name:     domain.NewInternedString(entry.Name),
			Version:  entry.Version,
			Build:    entry.Build,
			Channel:  channel,
			Subdir:   string(platform),
			FileName: fileName,
			URL:      channel + "/" + string(platform) + "/" + fileName,
			Depends:  entry.Depends,
		})
	}

	for name, entries := range file.Pypi {
		for _, entry := range entries {
			db.AddPypi(domain.PypiRecord{
				Name:    domain.NewInternedString(name),
				Version: entry.Version,
				Source:  entry.Source,
				Depends: entry.Depends,
			})
		}
	}

	return nil
}

// channelPath strips a file:// scheme so channels written as file URLs and
// as bare paths both resolve.
func channelPath(channel string) string {
	return strings.TrimPrefix(channel, "file://")
}
