// SPDX-License-Identifier: MPL-2.0

package mtime

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/invowk/packmk/internal/testutil"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// assertMonotonic checks that every directory under root, root included, is
// at least as new as every entry beneath it.
func assertMonotonic(t *testing.T, root string) {
	t.Helper()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		mt := testutil.MustModTime(t, path)
		for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
			if dm := testutil.MustModTime(t, dir); dm.Before(mt) {
				t.Errorf("%s (%v) is older than descendant %s (%v)", dir, dm, path, mt)
			}
			if dir == root {
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestPropagate_RaisesAncestors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	deep := filepath.Join(root, "pack", "textures", "blocks", "stone.png")
	other := filepath.Join(root, "pack", "manifest.json")
	testutil.MustWriteFile(t, deep, "png")
	testutil.MustWriteFile(t, other, "{}")

	for _, dir := range []string{
		filepath.Join(root, "pack", "textures", "blocks"),
		filepath.Join(root, "pack", "textures"),
		filepath.Join(root, "pack"),
		root,
	} {
		testutil.MustChtimes(t, dir, base)
	}
	testutil.MustChtimes(t, other, base.Add(-time.Hour))
	newest := base.Add(2 * time.Hour)
	testutil.MustChtimes(t, deep, newest)

	report, err := Propagate(root, Options{})
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if len(report.Failures) != 0 {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
	if len(report.Updated) != 4 {
		t.Errorf("expected 4 updates, got %d: %v", len(report.Updated), report.Updated)
	}

	for _, dir := range []string{
		filepath.Join(root, "pack", "textures", "blocks"),
		filepath.Join(root, "pack", "textures"),
		filepath.Join(root, "pack"),
		root,
	} {
		if got := testutil.MustModTime(t, dir); !got.Equal(newest) {
			t.Errorf("%s mtime = %v, want %v", dir, got, newest)
		}
	}
	if got := testutil.MustModTime(t, other); !got.Equal(base.Add(-time.Hour)) {
		t.Errorf("files must not be touched, %s mtime = %v", other, got)
	}
	assertMonotonic(t, root)
}

func TestPropagate_LeavesNewerParentsAlone(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "pack", "a.txt")
	testutil.MustWriteFile(t, file, "a")
	testutil.MustChtimes(t, file, base)
	testutil.MustChtimes(t, filepath.Join(root, "pack"), base.Add(time.Hour))
	testutil.MustChtimes(t, root, base.Add(2*time.Hour))

	report, err := Propagate(root, Options{})
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if len(report.Updated) != 0 {
		t.Errorf("expected no updates, got %v", report.Updated)
	}
	if got := testutil.MustModTime(t, filepath.Join(root, "pack")); !got.Equal(base.Add(time.Hour)) {
		t.Errorf("pack mtime changed to %v", got)
	}
}

func TestPropagate_RandomTreeIsMonotonic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	paths := []string{
		"a/b/c/d.txt", "a/b/e.txt", "a/f/g.txt", "h/i.txt", "h/j/k/l/m.txt", "n.txt",
	}
	for i, rel := range paths {
		p := filepath.Join(root, filepath.FromSlash(rel))
		testutil.MustWriteFile(t, p, rel)
		testutil.MustChtimes(t, p, base.Add(time.Duration((i*7)%5)*time.Minute))
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			testutil.MustChtimes(t, path, base.Add(-time.Hour))
		}
		return nil
	})

	if _, err := Propagate(root, Options{}); err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	assertMonotonic(t, root)

	// A second pass has nothing left to do.
	report, err := Propagate(root, Options{})
	if err != nil {
		t.Fatalf("second Propagate() error = %v", err)
	}
	if len(report.Updated) != 0 {
		t.Errorf("second pass updated %d entries", len(report.Updated))
	}
}

func TestPropagate_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Propagate(filepath.Join(t.TempDir(), "missing"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestPropagate_RootIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file")
	testutil.MustWriteFile(t, file, "x")

	_, err := Propagate(file, Options{})
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	var nd *NotDirectoryError
	if !errors.As(err, &nd) || nd.Path != file {
		t.Errorf("expected *NotDirectoryError for %s, got %v", file, err)
	}
}

func TestPropagate_PermissionDeniedIsReported(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced the same way on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	sibling := filepath.Join(root, "open")
	testutil.MustWriteFile(t, filepath.Join(locked, "f"), "x")
	testutil.MustWriteFile(t, filepath.Join(sibling, "f"), "x")
	testutil.MustChtimes(t, filepath.Join(locked, "f"), base.Add(time.Hour))
	testutil.MustChtimes(t, filepath.Join(sibling, "f"), base.Add(time.Hour))
	testutil.MustChtimes(t, locked, base)
	testutil.MustChtimes(t, sibling, base)
	testutil.MustChtimes(t, root, base)

	// Owners may always set times on their own files, so deny traversal of
	// the locked directory instead.
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report, err := Propagate(root, Options{})
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}
	if len(report.Failures) == 0 {
		t.Error("expected a failure for the locked directory")
	}
	if got := testutil.MustModTime(t, sibling); !got.Equal(base.Add(time.Hour)) {
		t.Errorf("sibling should still be updated, mtime = %v", got)
	}
}
