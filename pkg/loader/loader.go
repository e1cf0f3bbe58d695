// Package loader reads option trees from JSON, YAML and SQLite sources.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treeselect/pkg/debug"
	"github.com/vanderheijden86/treeselect/pkg/model"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported option file format")

// DefaultTable is the SQLite table read when none is named.
const DefaultTable = "options"

// maxParallel caps how many sources LoadAll reads at once.
const maxParallel = 8

// LoadFile reads an option tree from path, choosing the decoder by extension.
// SQLite files (.db, .sqlite) are read from DefaultTable.
func LoadFile(path string) ([]model.Option, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return Decode(data, ext)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(context.Background(), path, DefaultTable)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Decode parses data as an option list. ext selects the format (".json",
// ".yaml" or ".yml"). The tree is validated before it is returned.
func Decode(data []byte, ext string) ([]model.Option, error) {
	var opts []model.Option
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("parsing JSON options: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("parsing YAML options: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	if err := model.ValidateTree(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// LoadAll loads every path concurrently and concatenates the trees in
// argument order. The first error cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string) ([]model.Option, error) {
	return LoadAllFromTable(ctx, paths, DefaultTable)
}

// LoadAllFromTable is LoadAll with SQLite sources read from table.
func LoadAllFromTable(ctx context.Context, paths []string, table string) ([]model.Option, error) {
	results := make([][]model.Option, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				opts []model.Option
				err  error
			)
			if isSQLite(path) {
				opts, err = LoadSQLite(ctx, path, table)
			} else {
				opts, err = LoadFile(path)
			}
			if err != nil {
				return err
			}
			results[i] = opts
			debug.Log("loader: %s: %d root options", path, len(opts))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Option
	for _, opts := range results {
		all = append(all, opts...)
	}
	return all, nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
