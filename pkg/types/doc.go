// Package types defines the core data model shared across schematic:
// actions, action results, execution context, and the narrow interfaces
// through which the engine talks to its external collaborators.
//
// The package is deliberately free of behavior beyond small accessors so
// that every other package can depend on it without import cycles.
package types
