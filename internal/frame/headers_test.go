package frame

import (
	"testing"

	"github.com/IBM/sarama"

	"splice/sourcemap"
	"splice/vfile"
)

func msg(key, value string, headers ...string) *sarama.ConsumerMessage {
	m := &sarama.ConsumerMessage{Topic: "units", Partition: 0, Offset: 5, Key: []byte(key), Value: []byte(value)}
	for i := 0; i+1 < len(headers); i += 2 {
		m.Headers = append(m.Headers, &sarama.RecordHeader{Key: []byte(headers[i]), Value: []byte(headers[i+1])})
	}
	return m
}

func TestFromRecord_Buffer(t *testing.T) {
	fr, err := FromRecord(msg("/src/a.js", "var a;", HeaderBase, "/src", HeaderMode, "640",
		HeaderSourceMap, `{"version":3,"sources":["a.js"],"names":[],"mappings":"AAAA"}`))
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	f := fr.File
	if fr.EOF || !f.IsBuffer() || string(f.Contents) != "var a;" {
		t.Fatalf("unexpected frame %+v", fr)
	}
	if f.Relative() != "a.js" || f.Mode != 0o640 || f.SourceMap == nil {
		t.Fatalf("metadata not decoded: %+v", f)
	}
	if fr.Checkpoint.Topic != "units" || fr.Checkpoint.Offset != 5 {
		t.Fatalf("unexpected checkpoint %+v", fr.Checkpoint)
	}
}

func TestFromRecord_EmptyValueIsStillAUnit(t *testing.T) {
	fr, err := FromRecord(msg("a.js", ""))
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if fr.File.IsNull() {
		t.Fatal("empty record value must decode to an empty buffer, not the null unit")
	}
}

func TestFromRecord_Markers(t *testing.T) {
	cases := []struct {
		header string
		check  func(*Frame) bool
	}{
		{HeaderEOF, func(f *Frame) bool { return f.EOF && f.File == nil }},
		{HeaderNull, func(f *Frame) bool { return f.File.IsNull() }},
		{HeaderStream, func(f *Frame) bool { return f.File.IsStream() }},
	}
	for _, c := range cases {
		fr, err := FromRecord(msg("a.js", "x", c.header, "1"))
		if err != nil {
			t.Fatalf("%s: %v", c.header, err)
		}
		if !c.check(fr) {
			t.Fatalf("%s: unexpected frame %+v", c.header, fr)
		}
	}
}

func TestFromRecord_BadHeaders(t *testing.T) {
	if _, err := FromRecord(msg("a.js", "x", HeaderMode, "rw-")); err == nil {
		t.Fatal("expected bad mode error")
	}
	if _, err := FromRecord(msg("a.js", "x", HeaderSourceMap, "{")); err == nil {
		t.Fatal("expected bad source map error")
	}
}

func TestHeaders(t *testing.T) {
	f := &vfile.File{Cwd: "/c", Base: "/c/b", Path: "/c/b/all.js", Mode: 0o600, SourceMap: &sourcemap.Map{Version: 3, File: "all.js"}}
	hs, err := Headers(f)
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	got := map[string]string{}
	for _, h := range hs {
		got[string(h.Key)] = string(h.Value)
	}
	if got[HeaderMode] != "600" || got[HeaderCwd] != "/c" || got[HeaderBase] != "/c/b" || got[HeaderSourceMap] == "" {
		t.Fatalf("unexpected headers %v", got)
	}
}

func TestHeaders_NullUnitRoundTrip(t *testing.T) {
	hs, err := Headers(&vfile.File{Base: "/src", Path: "/src/n.js"})
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	m := &sarama.ConsumerMessage{Topic: "out", Key: []byte("/src/n.js")}
	for i := range hs {
		m.Headers = append(m.Headers, &hs[i])
	}
	fr, err := FromRecord(m)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if !fr.File.IsNull() || fr.File.IsBuffer() {
		t.Fatalf("null unit did not survive the wire: %+v", fr.File)
	}

	hs, _ = Headers(&vfile.File{Path: "/src/e.js", Contents: []byte{}})
	for _, h := range hs {
		if string(h.Key) == HeaderNull {
			t.Fatal("empty buffer must not be marked null")
		}
	}
}
