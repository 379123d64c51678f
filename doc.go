// Package formatenforcer constrains token-by-token language model
// generation so that its output always matches a target format: a JSON
// Schema, a regular expression, or a fixed list of phrase choices.
//
// Credit to https://github.com/noamgat/lm-format-enforcer for the
// character-level parsing design this package implements in Go.
package formatenforcer
