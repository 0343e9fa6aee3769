package blobstore

import "os"

// Options configures Storage behavior.
type Options struct {
	FileMode os.FileMode // Permission bits for blob data files
	DirMode  os.FileMode // Permission bits for directories
}

// Option is a functional option for configuring Storage.
type Option func(opts *Options)

// WithFileMode sets the file permission mode for blob data files.
// Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(opts *Options) {
		opts.FileMode = mode
	}
}

// WithDirMode sets the directory permission mode for storage directories.
// Default is 0755.
func WithDirMode(mode os.FileMode) Option {
	return func(opts *Options) {
		opts.DirMode = mode
	}
}

var defaultOpts = &Options{
	FileMode: 0644,
	DirMode:  0755,
}
