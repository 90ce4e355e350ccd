// Package filesystem provides types.FS implementations: a direct OS
// filesystem for production and an afero-backed one used with in-memory
// backends in tests.
package filesystem
