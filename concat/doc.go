// Package concat implements the concatenating transform stage: it accumulates
// buffered file units in arrival order, runs each through a transform, joins
// the results with a separator and emits a single output unit (with a merged
// source map when any input carried one) at end of input.
package concat
