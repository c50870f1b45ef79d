package frame

import (
	"bytes"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/IBM/sarama"

	"splice/sourcemap"
	"splice/vfile"
)

// Record headers understood on the wire. The record key is the unit path and
// the value its contents.
const (
	HeaderCwd       = "splice-cwd"
	HeaderBase      = "splice-base"
	HeaderMode      = "splice-mode"
	HeaderSourceMap = "splice-sourcemap"
	HeaderNull      = "splice-null"
	HeaderStream    = "splice-stream"
	HeaderEOF       = "splice-eof"
)

// FromRecord decodes a consumed Kafka record.
func FromRecord(msg *sarama.ConsumerMessage) (*Frame, error) {
	fr := &Frame{Checkpoint: &Checkpoint{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset}}
	h := make(map[string][]byte, len(msg.Headers))
	for _, rh := range msg.Headers {
		if rh != nil {
			h[string(rh.Key)] = rh.Value
		}
	}
	if _, ok := h[HeaderEOF]; ok {
		fr.EOF = true
		return fr, nil
	}

	f := &vfile.File{
		Path: string(msg.Key),
		Cwd:  string(h[HeaderCwd]),
		Base: string(h[HeaderBase]),
	}
	if v, ok := h[HeaderMode]; ok {
		m, err := strconv.ParseUint(string(v), 8, 32)
		if err != nil {
			return nil, fmt.Errorf("record %s/%d@%d: bad %s %q", msg.Topic, msg.Partition, msg.Offset, HeaderMode, v)
		}
		f.Mode = fs.FileMode(m) & fs.ModePerm
	}
	if v, ok := h[HeaderSourceMap]; ok && len(v) > 0 {
		sm, err := sourcemap.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("record %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		f.SourceMap = sm
	}
	switch {
	case has(h, HeaderNull):
	case has(h, HeaderStream):
		f.Stream = bytes.NewReader(msg.Value)
	default:
		f.Contents = append([]byte{}, msg.Value...)
	}
	fr.File = f
	return fr, nil
}

// Headers encodes the metadata of f for publishing.
func Headers(f *vfile.File) ([]sarama.RecordHeader, error) {
	hs := []sarama.RecordHeader{
		{Key: []byte(HeaderMode), Value: []byte(strconv.FormatUint(uint64(f.Mode.Perm()), 8))},
	}
	if f.IsNull() {
		hs = append(hs, sarama.RecordHeader{Key: []byte(HeaderNull), Value: []byte("1")})
	}
	if f.Cwd != "" {
		hs = append(hs, sarama.RecordHeader{Key: []byte(HeaderCwd), Value: []byte(f.Cwd)})
	}
	if f.Base != "" {
		hs = append(hs, sarama.RecordHeader{Key: []byte(HeaderBase), Value: []byte(f.Base)})
	}
	if f.SourceMap != nil {
		raw, err := f.SourceMap.Marshal()
		if err != nil {
			return nil, err
		}
		hs = append(hs, sarama.RecordHeader{Key: []byte(HeaderSourceMap), Value: raw})
	}
	return hs, nil
}

func has(h map[string][]byte, k string) bool {
	_, ok := h[k]
	return ok
}
