// Package blobstore implements the photo object store on the local
// filesystem. Objects are addressed by slash-separated keys
// ("{storeID}/{name}") that map directly onto the directory tree, which
// makes prefix listing a plain walk. Writes go through a temp file and an
// atomic rename, so a blob either fully exists or doesn't.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	tempDirName  = ".tmp"
	maxKeyLength = 1024
)

var (
	ErrEmptyKey   = errors.New("key cannot be empty")
	ErrInvalidKey = errors.New("key contains invalid characters")
	ErrKeyLength  = errors.New("maximal key length exceeds")
	ErrNotFound   = errors.New("object with key not found")
)

// Storage is a filesystem-backed object store rooted at a single directory.
// All methods are safe for concurrent use.
type Storage struct {
	root    string
	baseURL string
	opts    *Options
}

// New opens (or creates) a storage rooted at root. baseURL is the URL prefix
// under which objects are publicly served, e.g. "/media".
func New(root, baseURL string, opts ...Option) (*Storage, error) {
	options := &Options{
		FileMode: defaultOpts.FileMode,
		DirMode:  defaultOpts.DirMode,
	}
	for _, opt := range opts {
		opt(options)
	}

	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, tempDirName), options.DirMode); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	return &Storage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    options,
	}, nil
}

// Put stores an object under key, reading its content from r, and returns
// the number of bytes written. An existing object with the same key is
// overwritten.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tempDirName), "put-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing blob %q: %w", key, err)
	}

	if err := os.Chmod(tmpPath, s.opts.FileMode); err != nil {
		return n, fmt.Errorf("setting blob mode: %w", err)
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), s.opts.DirMode); err != nil {
		return n, fmt.Errorf("creating blob directory: %w", err)
	}

	// Atomic rename to the final location.
	if err := os.Rename(tmpPath, dst); err != nil {
		return n, fmt.Errorf("committing blob %q: %w", key, err)
	}
	return n, nil
}

// Open returns the content of the object stored under key.
// The caller must close the returned reader.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("open blob %q: %w", key, err)
	}
	return f, nil
}

// Exists reports whether an object is stored under key.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the keys of all stored objects starting with prefix.
// An empty prefix matches every object.
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if d.Name() == tempDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	return keys, nil
}

// Remove deletes the given objects. Missing objects are not an error, so a
// partially completed removal can be retried.
func (s *Storage) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
		path := filepath.Join(s.root, filepath.FromSlash(key))
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove blob %q: %w", key, err)
		}
		s.cleanupEmptyDirs(filepath.Dir(path))
	}
	return nil
}

// PublicURL derives the URL under which the object stored at key is served.
func (s *Storage) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// cleanupEmptyDirs removes empty parent directories after a blob deletion,
// walking up until the storage root or a non-empty directory.
func (s *Storage) cleanupEmptyDirs(dir string) {
	for dir != s.root && dir != "." && dir != "/" {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > maxKeyLength {
		return ErrKeyLength
	}
	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return fmt.Errorf("key cannot start or end with slash: %w", ErrInvalidKey)
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("path traversal not allowed: %w", ErrInvalidKey)
	}
	if strings.Contains(key, "//") {
		return fmt.Errorf("consecutive slashes not allowed: %w", ErrInvalidKey)
	}
	for i, r := range key {
		if !isValidKeyChar(r) {
			return fmt.Errorf("invalid character %q at position %d: %w", r, i, ErrInvalidKey)
		}
	}
	return nil
}

// isValidKeyChar reports whether r is a valid character in a blob key.
// Valid characters are: alphanumeric, hyphen, underscore, dot, forward slash.
func isValidKeyChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.' || r == '/'
}

// SanitizeName maps an uploaded file name onto the valid key charset.
// Path separators and other invalid runes become underscores; dot runs are
// collapsed so the result never trips the traversal check.
func SanitizeName(name string) string {
	name = filepath.Base(filepath.ToSlash(name))

	var b strings.Builder
	for _, r := range name {
		if r == '/' || !isValidKeyChar(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	out = strings.TrimLeft(out, ".")
	if out == "" {
		return "file"
	}
	return out
}
