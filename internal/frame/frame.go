// Package frame is the envelope sources hand to the pipeline runner.
package frame

import "splice/vfile"

// Checkpoint identifies the record a frame came from so sinks can ack it.
type Checkpoint struct {
	Topic     string
	Partition int32
	Offset    int64
}

// Frame carries either a unit or the end-of-input marker for the current
// bundle.
type Frame struct {
	File       *vfile.File
	EOF        bool
	Checkpoint *Checkpoint
}

// EmitFunc is how a source pushes frames into the pipeline.
type EmitFunc func(*Frame) error

// AckFunc is how a sink reports that the output of a bundle has been
// durably handled. The checkpoint is the bundle's end-of-input record.
type AckFunc func(*Checkpoint)
