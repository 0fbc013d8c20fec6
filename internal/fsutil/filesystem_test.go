package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestOSFileSystem_DirExists(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()

	if !osfs.DirExists(dir) {
		t.Errorf("expected %s to exist", dir)
	}
	if osfs.DirExists(filepath.Join(dir, "missing")) {
		t.Error("expected missing directory to not exist")
	}

	file := filepath.Join(dir, "file.bin")
	if err := osfs.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if osfs.DirExists(file) {
		t.Error("a regular file is not a directory")
	}
}

func TestOSFileSystem_WriteRenameRead(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()
	tmp := filepath.Join(dir, "a.tmp")
	final := filepath.Join(dir, "a.bundle")

	if err := osfs.WriteFile(tmp, []byte("payload"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := osfs.Rename(tmp, final); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	data, err := osfs.ReadFile(final)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected %q, got %q", "payload", data)
	}
	if _, err := os.Stat(tmp); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected temp file to be gone, got %v", err)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}

	// Returned slices must not alias internal storage.
	data[0] = 'J'
	again, _ := mfs.ReadFile("/test.txt")
	if string(again) != string(testData) {
		t.Errorf("internal data was modified through returned slice: %q", again)
	}
}

func TestMemoryFileSystem_WriteNeedsParent(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := mfs.WriteFile("/out/run1/tracks.bundle", []byte("x"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist writing into a missing dir, got %v", err)
	}

	if err := mfs.MkdirAll("/out/run1", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !mfs.DirExists("/out") || !mfs.DirExists("/out/run1") {
		t.Error("expected MkdirAll to create parents")
	}
	if err := mfs.WriteFile("/out/run1/tracks.bundle", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestMemoryFileSystem_RenameAndRemove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.MkdirAll("/work", 0755); err != nil {
		t.Fatal(err)
	}
	if err := mfs.WriteFile("/work/a.tmp", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := mfs.Rename("/work/a.tmp", "/work/a"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, err := mfs.ReadFile("/work/a.tmp"); err == nil {
		t.Error("old path should be gone after rename")
	}
	info, err := mfs.Stat("/work/a")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 || info.IsDir() {
		t.Errorf("unexpected file info: size=%d dir=%v", info.Size(), info.IsDir())
	}

	if err := mfs.Rename("/work/missing", "/work/b"); err == nil {
		t.Error("expected error renaming a missing file")
	}
	if err := mfs.Remove("/work/a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mfs.Remove("/work/a"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist on second remove, got %v", err)
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.MkdirAll("/out/sub", 0755)
	_ = mfs.MkdirAll("/other", 0755)
	_ = mfs.WriteFile("/out/a", nil, 0644)
	_ = mfs.WriteFile("/out/sub/b", nil, 0644)
	_ = mfs.WriteFile("/other/c", nil, 0644)

	got := mfs.Files("/out")
	sort.Strings(got)
	want := []string{"/out/a", "/out/sub/b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Files(/out) = %v, want %v", got, want)
	}

	info, err := mfs.Stat("/out/sub")
	if err != nil || !info.IsDir() {
		t.Errorf("expected /out/sub to stat as a directory, err=%v", err)
	}
}

func TestOSFileSystem_MkdirAll(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "plots", "run1")
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !fsys.DirExists(dir) {
		t.Errorf("expected %s to exist", dir)
	}
}
