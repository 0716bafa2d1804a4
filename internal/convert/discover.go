// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/wdfconv/internal/plan"
	"github.com/pdiddy/wdfconv/pkg/types"
)

// DiscoverOptions controls source file discovery.
type DiscoverOptions struct {
	// Extension is the recognized extension including the dot. Matching
	// is case-insensitive.
	Extension string

	// Recursive descends into subdirectories at any depth; otherwise only
	// direct children of the root are considered.
	Recursive bool

	// Exclude is a directory that is never descended into, typically an
	// export root nested inside the import root.
	Exclude string

	// OnSkip, if set, is told about subdirectories that could not be read.
	OnSkip func(path string, err error)
}

// Discover returns the source files under root with the recognized
// extension, sorted lexicographically by path for deterministic processing
// order. Files with other extensions are ignored. An unreadable root is an
// error; unreadable subdirectories are skipped.
func Discover(root string, opts DiscoverOptions) ([]types.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	var exclude string
	if opts.Exclude != "" {
		if exclude, err = filepath.Abs(opts.Exclude); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", opts.Exclude, err)
		}
	}

	var paths []string
	if opts.Recursive {
		paths, err = walkTree(absRoot, exclude, opts)
	} else {
		paths, err = listDir(absRoot, opts)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	files := make([]types.SourceFile, 0, len(paths))
	for _, p := range paths {
		src, err := plan.NewSourceFile(absRoot, p)
		if err != nil {
			return nil, err
		}
		files = append(files, src)
	}
	return files, nil
}

func listDir(root string, opts DiscoverOptions) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading import directory %s: %w", root, err)
	}
	var paths []string
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if matches(path, entry, opts.Extension) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func walkTree(root, exclude string, opts DiscoverOptions) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if opts.OnSkip != nil {
				opts.OnSkip(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if exclude != "" && path == exclude && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if matches(path, d, opts.Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking import directory %s: %w", root, err)
	}
	return paths, nil
}

// matches reports whether the entry is a file (or a symlink to one) with
// the recognized extension.
func matches(path string, d fs.DirEntry, ext string) bool {
	if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
		return false
	}
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return false
}
