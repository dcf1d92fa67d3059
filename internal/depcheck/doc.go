// Package depcheck records what a compiled container depends on and tells
// a build cache whether a previous result is still valid.
package depcheck
