// Package entrytree builds a static [fs.FS] from a flat list of named,
// lazily-opened files. It has no notion of incremental construction or
// concurrent mutation: the whole tree is known upfront, built once, and
// read many times — the same shape internal/fskeleton's Make-based API
// has, generalized so directories don't need to be named explicitly
// (they're synthesized from '/'-separated file paths).
package entrytree

import (
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// Opener produces a file's content on first read. It is called at most
// once per fs.FS.Open call, never cached across calls.
type Opener func() ([]byte, error)

// File describes one leaf entry to add to the tree.
type File struct {
	Path    string // slash-separated, relative to the tree root
	Size    int64
	ModTime time.Time
	Open    Opener
}

type node struct {
	name     string
	modTime  time.Time
	size     int64
	isDir    bool
	open     Opener
	children []node // sorted by name
}

// FS is a read-only, in-memory-known directory tree.
type FS struct {
	root node
}

// Build assembles an [FS] from a flat list of files. Parent directories
// are created implicitly; it is an error for two files to collide on
// the same path, or for a file to shadow a directory (or vice versa).
func Build(files []File) (*FS, error) {
	root := node{name: ".", isDir: true}
	for _, f := range files {
		clean := path.Clean(f.Path)
		if !fs.ValidPath(clean) {
			return nil, &fs.PathError{Op: "build", Path: f.Path, Err: fs.ErrInvalid}
		}
		if err := insert(&root, strings.Split(clean, "/"), f); err != nil {
			return nil, err
		}
	}
	sortChildren(&root)
	return &FS{root: root}, nil
}

func insert(dir *node, components []string, f File) error {
	name := components[0]
	rest := components[1:]

	idx := -1
	for i := range dir.children {
		if dir.children[i].name == name {
			idx = i
			break
		}
	}

	if len(rest) == 0 {
		if idx != -1 {
			return &fs.PathError{Op: "build", Path: f.Path, Err: fs.ErrExist}
		}
		dir.children = append(dir.children, node{
			name:    name,
			modTime: f.ModTime,
			size:    f.Size,
			open:    f.Open,
		})
		return nil
	}

	if idx == -1 {
		dir.children = append(dir.children, node{name: name, isDir: true})
		idx = len(dir.children) - 1
	} else if !dir.children[idx].isDir {
		return &fs.PathError{Op: "build", Path: f.Path, Err: fs.ErrExist}
	}
	return insert(&dir.children[idx], rest, f)
}

func sortChildren(n *node) {
	slices.SortFunc(n.children, func(a, b node) int { return strings.Compare(a.name, b.name) })
	for i := range n.children {
		sortChildren(&n.children[i])
	}
}

func (fsys *FS) lookup(name string) (*node, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}
	n := &fsys.root
	if name == "." {
		return n, nil
	}
	for _, c := range strings.Split(name, "/") {
		found, ok := slices.BinarySearchFunc(n.children, c, func(e node, s string) int { return strings.Compare(e.name, s) })
		if !ok {
			return nil, fs.ErrNotExist
		}
		n = &n.children[found]
	}
	return n, nil
}

// Open implements fs.FS.
func (fsys *FS) Open(name string) (fs.File, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if n.isDir {
		return &openDir{node: n}, nil
	}
	return &openFile{node: n}, nil
}

// Stat implements fs.StatFS.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return n, nil
}

// ReadDir implements fs.ReadDirFS.
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	if !n.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	list := make([]fs.DirEntry, len(n.children))
	for i := range n.children {
		list[i] = fs.FileInfoToDirEntry(&n.children[i])
	}
	return list, nil
}

// node satisfies fs.FileInfo directly; both openFile and openDir embed it.
func (n *node) Name() string { return n.name }
func (n *node) Size() int64  { return n.size }
func (n *node) Mode() fs.FileMode {
	if n.isDir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (n *node) ModTime() time.Time { return n.modTime }
func (n *node) IsDir() bool        { return n.isDir }
func (n *node) Sys() any           { return nil }

type openFile struct {
	*node
	data []byte
	pos  int
	err  error
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.node, nil }

func (f *openFile) Read(p []byte) (int, error) {
	if f.data == nil && f.err == nil {
		if f.open == nil {
			f.data = []byte{}
		} else {
			f.data, f.err = f.open()
			if f.data == nil && f.err == nil {
				f.data = []byte{}
			}
		}
	}
	if f.err != nil {
		return 0, f.err
	}
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func (f *openFile) Close() error { return nil }

type openDir struct {
	*node
	progress int
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.node, nil }
func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}
func (d *openDir) Close() error { return nil }

func (d *openDir) ReadDir(count int) ([]fs.DirEntry, error) {
	n := len(d.children) - d.progress
	if n == 0 && count > 0 {
		return nil, io.EOF
	}
	if count > 0 && n > count {
		n = count
	}
	list := make([]fs.DirEntry, n)
	for i := range list {
		list[i] = fs.FileInfoToDirEntry(&d.children[d.progress+i])
	}
	d.progress += n
	return list, nil
}

var (
	_ fs.FS          = new(FS)
	_ fs.StatFS      = new(FS)
	_ fs.ReadDirFS   = new(FS)
	_ fs.File        = new(openFile)
	_ fs.ReadDirFile = new(openDir)
	_ fs.FileInfo    = new(node)
)
