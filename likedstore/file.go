// SPDX-License-Identifier: GPL-3.0-or-later

package likedstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bassosimone/apiflow/tmdb"
	"gopkg.in/yaml.v3"
)

// document is the on-disk representation of the liked IDs.
type document struct {
	Liked []int `yaml:"liked"`
}

// File is a [tmdb.LikedStore] keeping the liked IDs in a YAML file.
//
// The file is read on every call, so edits made by other processes are
// visible. A missing file is an empty set. Writes replace the file
// atomically through a temporary file in the same directory.
type File struct {
	// Path is the file path.
	Path string

	mu sync.Mutex
}

// NewFile returns a new [*File] stored at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

var _ tmdb.LikedStore = &File{}

// Fetch implements [tmdb.LikedStore].
func (f *File) Fetch(ctx context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Add implements [tmdb.LikedStore].
func (f *File) Add(ctx context.Context, id int) error {
	return f.update(func(ids []int) []int {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
}

// Remove implements [tmdb.LikedStore].
func (f *File) Remove(ctx context.Context, id int) error {
	return f.update(func(ids []int) []int {
		return slices.DeleteFunc(ids, func(v int) bool { return v == id })
	})
}

func (f *File) update(fn func([]int) []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, err := f.load()
	if err != nil {
		return err
	}
	return f.store(fn(ids))
}

// load returns the sorted, deduplicated IDs. The caller must hold the mutex.
func (f *File) load() ([]int, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("likedstore: parsing %s: %w", f.Path, err)
	}
	ids := slices.Clone(doc.Liked)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// store writes ids sorted. The caller must hold the mutex.
func (f *File) store(ids []int) error {
	slices.Sort(ids)
	data, err := yaml.Marshal(document{Liked: slices.Compact(ids)})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
