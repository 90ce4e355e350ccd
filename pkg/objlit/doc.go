// Package objlit parses the narrow family of object-literal shapes that
// generated configuration files take: a bare object literal, an
// `export default {...}` statement, or a `module.exports = {...}`
// assignment. It is deliberately not a JavaScript interpreter; anything
// outside these shapes is rejected and callers fall back to JSON parsing.
//
// Parsed objects preserve key order, so a structural edit re-serializes a
// file without shuffling the keys the generator emitted.
package objlit
