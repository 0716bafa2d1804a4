// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wdfconv/pkg/types"
)

func TestNewSourceFile(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name     string
		path     string
		wantBase string
		wantRel  string
		wantErr  bool
	}{
		{"depth zero", filepath.Join(root, "sample.wdf"), "sample", "", false},
		{"nested", filepath.Join(root, "day1", "map", "scan.01.wdf"), "scan.01", filepath.Join("day1", "map"), false},
		{"upper case extension", filepath.Join(root, "A.WDF"), "A", "", false},
		{"outside root", filepath.Join(filepath.Dir(root), "other.wdf"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSourceFile(root, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, src.Path)
			assert.Equal(t, tt.wantBase, src.Basename)
			assert.Equal(t, tt.wantRel, src.RelDir)
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		mirror   bool
		format   types.ExportFormat
		wantKind types.TargetKind
		wantDir  string // relative to export root
		wantPath string // relative to export root
	}{
		{"txt flat", "day1", false, types.FormatTXT, types.TargetPerSpectrumDir, "", "sample"},
		{"txt mirror", "day1", true, types.FormatTXT, types.TargetPerSpectrumDir, "day1", filepath.Join("day1", "sample")},
		{"csv flat", filepath.Join("a", "b"), false, types.FormatCSV, types.TargetConsolidatedFile, "", "sample.csv"},
		{"csv mirror", filepath.Join("a", "b"), true, types.FormatCSV, types.TargetConsolidatedFile, filepath.Join("a", "b"), filepath.Join("a", "b", "sample.csv")},
		{"csv mirror at depth zero", "", true, types.FormatCSV, types.TargetConsolidatedFile, "", "sample.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importRoot, exportRoot := t.TempDir(), filepath.Join(t.TempDir(), "out")
			src, err := NewSourceFile(importRoot, filepath.Join(importRoot, tt.rel, "sample.wdf"))
			require.NoError(t, err)

			got, err := Resolve(importRoot, exportRoot, src, tt.mirror, tt.format)
			require.NoError(t, err)

			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, filepath.Join(exportRoot, tt.wantDir), got.Dir)
			assert.Equal(t, filepath.Join(exportRoot, tt.wantPath), got.Path)
			assert.Equal(t, "sample", got.Basename)

			created := got.Dir
			if got.Kind == types.TargetPerSpectrumDir {
				created = got.Path
			}
			info, err := os.Stat(created)
			require.NoError(t, err, "resolve must create the output directory")
			assert.True(t, info.IsDir())

			if got.Kind == types.TargetConsolidatedFile {
				_, err := os.Stat(got.Path)
				assert.True(t, os.IsNotExist(err), "resolve must not create the table file")
			}
		})
	}
}

func TestResolve_MirrorRecomputesRelDir(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	src := types.SourceFile{Path: filepath.Join(importRoot, "x", "y.wdf"), Basename: "y"}

	got, err := Resolve(importRoot, exportRoot, src, true, types.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(exportRoot, "x", "y.csv"), got.Path)
}

func TestResolve_Idempotent(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	src, err := NewSourceFile(importRoot, filepath.Join(importRoot, "d", "s.wdf"))
	require.NoError(t, err)

	first, err := Resolve(importRoot, exportRoot, src, true, types.FormatTXT)
	require.NoError(t, err)
	second, err := Resolve(importRoot, exportRoot, src, true, types.FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_ConcurrentSiblings(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := types.SourceFile{
				Path:     filepath.Join(importRoot, "shared", "deep", "f.wdf"),
				Basename: string(rune('a' + i)),
			}
			_, errs[i] = Resolve(importRoot, exportRoot, src, true, types.FormatTXT)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "goroutine %d", i)
	}
}

func TestResolve_FileCollision(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	// A regular file where the mirrored directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(exportRoot, "day1"), []byte("x"), 0o644))

	src, err := NewSourceFile(importRoot, filepath.Join(importRoot, "day1", "s.wdf"))
	require.NoError(t, err)

	_, err = Resolve(importRoot, exportRoot, src, true, types.FormatCSV)
	var pe *types.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, filepath.Join(exportRoot, "day1"), pe.Path)

	// Flat layout is unaffected by the collision.
	_, err = Resolve(importRoot, exportRoot, src, false, types.FormatCSV)
	assert.NoError(t, err)
}

func TestResolve_TxtFolderCollidesWithFile(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(exportRoot, "s"), []byte("x"), 0o644))

	src, err := NewSourceFile(importRoot, filepath.Join(importRoot, "s.wdf"))
	require.NoError(t, err)

	_, err = Resolve(importRoot, exportRoot, src, false, types.FormatTXT)
	var pe *types.PathError
	assert.ErrorAs(t, err, &pe)
}

func TestMirrorTree(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	for _, d := range []string{"a/b/c", "empty", "x"} {
		require.NoError(t, os.MkdirAll(filepath.Join(importRoot, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(importRoot, "x", "f.wdf"), []byte("w"), 0o644))

	require.NoError(t, MirrorTree(importRoot, exportRoot))
	require.NoError(t, MirrorTree(importRoot, exportRoot), "mirroring twice must be harmless")

	for _, d := range []string{"a", "a/b", "a/b/c", "empty", "x"} {
		info, err := os.Stat(filepath.Join(exportRoot, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}
	_, err := os.Stat(filepath.Join(exportRoot, "x", "f.wdf"))
	assert.True(t, os.IsNotExist(err), "files must not be copied")
}

func TestMirrorTree_ExportInsideImport(t *testing.T) {
	importRoot := t.TempDir()
	exportRoot := filepath.Join(importRoot, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(importRoot, "a"), 0o755))
	require.NoError(t, os.MkdirAll(exportRoot, 0o755))

	require.NoError(t, MirrorTree(importRoot, exportRoot))

	_, err := os.Stat(filepath.Join(exportRoot, "a"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(exportRoot, "out"))
	assert.True(t, os.IsNotExist(err), "export root must not be mirrored into itself")
}

func TestMirrorTree_ReportsFailures(t *testing.T) {
	importRoot, exportRoot := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(importRoot, "blocked"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(importRoot, "fine"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(exportRoot, "blocked"), []byte("x"), 0o644))

	err := MirrorTree(importRoot, exportRoot)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(exportRoot, "fine"))
	assert.NoError(t, statErr, "other directories are still mirrored")
}
