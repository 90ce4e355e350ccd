// Package vfs implements the in-memory staging filesystem: a per-execution
// overlay over the real disk. Actions mutate the overlay only; the caller
// commits it with a single flush once the whole blueprint has succeeded, or
// discards it on failure.
//
// The subtle part is path identity. Actions address files three ways:
// monorepo-absolute paths rooted at a known package-root segment, OS-absolute
// paths, and paths relative to the instance's context root. One normalization
// function is shared by read, write, exists, and flush so that two spellings
// of the same file can never produce two overlay entries.
package vfs
