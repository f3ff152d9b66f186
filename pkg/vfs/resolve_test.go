package vfs

import "testing"

func TestResolveDotAndSlash(t *testing.T) {
	fs := newTestFS(t)

	if n, err := fs.resolve(".", fs.cwd); err != nil || n != fs.cwd {
		t.Fatalf("resolve(\".\") = (%d, %v), want (%d, nil)", n, err, fs.cwd)
	}
	if n, err := fs.resolve("/", fs.cwd); err != nil || n != RootInodeNum {
		t.Fatalf("resolve(\"/\") = (%d, %v), want (%d, nil)", n, err, RootInodeNum)
	}
}

func TestResolveNestedPath(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Mkdir("/a/b"); err != nil {
		t.Fatal(err)
	}

	num, err := fs.resolve("/a/b", fs.cwd)
	if err != nil {
		t.Fatalf("resolve(/a/b) failed: %v", err)
	}
	ino, err := fs.readInode(num)
	if err != nil {
		t.Fatal(err)
	}
	if ino.Mode != ModeDir {
		t.Fatalf("resolved /a/b is not a directory")
	}
}

func TestResolveThroughNonDirectoryFails(t *testing.T) {
	fs := newTestFS(t)
	f := zeroReader{}
	if err := fs.CpIn(f, 10, "/f"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.resolve("/f/x", fs.cwd); err != ErrNotFound {
		t.Fatalf("resolve(/f/x) = %v, want ErrNotFound (f is not a directory)", err)
	}
}

func TestResolveMissingComponent(t *testing.T) {
	fs := newTestFS(t)
	if _, err := fs.resolve("/nope", fs.cwd); err != ErrNotFound {
		t.Fatalf("resolve(/nope) = %v, want ErrNotFound", err)
	}
}

func TestResolveCollapsesDoubleSlashes(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.resolve("//a//", fs.cwd); err != nil {
		t.Fatalf("resolve(//a//) failed: %v", err)
	}
}
