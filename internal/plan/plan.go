// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan derives export destinations from source files and prepares
// the directories they live in.
//
// Layouts, for import root /in and export root /out with /in/day1/a.wdf:
//
//	txt, flat:    /out/a/             (a_0000.txt, a_0001.txt, ...)
//	txt, mirror:  /out/day1/a/
//	csv, flat:    /out/a.csv
//	csv, mirror:  /out/day1/a.csv
package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/wdfconv/pkg/types"
)

const dirPerm = 0o755

// NewSourceFile describes the file at path, which must live under
// importRoot. Both paths are made absolute.
func NewSourceFile(importRoot, path string) (types.SourceFile, error) {
	absRoot, err := filepath.Abs(importRoot)
	if err != nil {
		return types.SourceFile{}, fmt.Errorf("resolving import root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return types.SourceFile{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	rel, err := filepath.Rel(absRoot, filepath.Dir(absPath))
	if err != nil {
		return types.SourceFile{}, fmt.Errorf("relating %s to %s: %w", absPath, absRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return types.SourceFile{}, fmt.Errorf("%s is outside import root %s", absPath, absRoot)
	}
	if rel == "." {
		rel = ""
	}

	name := filepath.Base(absPath)
	return types.SourceFile{
		Path:     absPath,
		Basename: strings.TrimSuffix(name, filepath.Ext(name)),
		RelDir:   rel,
	}, nil
}

// Target computes the export destination for src without touching the
// filesystem.
func Target(exportRoot string, src types.SourceFile, mirror bool, format types.ExportFormat) types.ExportTarget {
	dir := exportRoot
	if mirror && src.RelDir != "" {
		dir = filepath.Join(exportRoot, src.RelDir)
	}

	if format == types.FormatCSV {
		return types.ExportTarget{
			Kind:     types.TargetConsolidatedFile,
			Dir:      dir,
			Path:     filepath.Join(dir, src.Basename+".csv"),
			Basename: src.Basename,
		}
	}
	return types.ExportTarget{
		Kind:     types.TargetPerSpectrumDir,
		Dir:      dir,
		Path:     filepath.Join(dir, src.Basename),
		Basename: src.Basename,
	}
}

// Resolve computes the export destination for src and creates the
// directory the writer will fill: the per-spectrum folder for txt, the
// containing directory for csv. When mirroring, the relative directory is
// taken from src.Path against importRoot. Creation is idempotent. Failures,
// including a path component that exists as a regular file, are returned
// as *types.PathError.
func Resolve(importRoot, exportRoot string, src types.SourceFile, mirror bool, format types.ExportFormat) (types.ExportTarget, error) {
	if mirror {
		s, err := NewSourceFile(importRoot, src.Path)
		if err != nil {
			return types.ExportTarget{}, &types.PathError{Path: src.Path, Err: err}
		}
		src.RelDir = s.RelDir
	}

	target := Target(exportRoot, src, mirror, format)

	dir := target.Dir
	if target.Kind == types.TargetPerSpectrumDir {
		dir = target.Path
	}
	if err := EnsureDir(dir); err != nil {
		return types.ExportTarget{}, err
	}
	return target, nil
}

// EnsureDir creates dir and its ancestors. An existing directory is not an
// error; an existing non-directory is.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &types.PathError{Path: dir, Err: err}
	}
	return nil
}

// MirrorTree recreates every directory below importRoot under exportRoot.
// Only directories are created. It keeps going past individual failures
// and returns them joined with errors.Join.
// An export root nested inside the import root is not descended into.
func MirrorTree(importRoot, exportRoot string) error {
	absExport, err := filepath.Abs(exportRoot)
	if err != nil {
		return fmt.Errorf("resolving export root: %w", err)
	}

	var errs []error
	err = filepath.WalkDir(importRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absExport {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(importRoot, path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if err := EnsureDir(filepath.Join(exportRoot, rel)); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
