package vfile

import (
	"strings"
	"testing"

	"splice/sourcemap"
)

func TestFile_Kinds(t *testing.T) {
	var nilFile *File
	if !nilFile.IsNull() {
		t.Fatal("nil file must be null")
	}
	if !(&File{Path: "a"}).IsNull() {
		t.Fatal("file without contents must be null")
	}
	buf := &File{Contents: []byte{}}
	if buf.IsNull() || !buf.IsBuffer() || buf.IsStream() {
		t.Fatal("empty buffer is a real buffered unit")
	}
	st := &File{Stream: strings.NewReader("x")}
	if st.IsNull() || st.IsBuffer() || !st.IsStream() {
		t.Fatal("stream unit misclassified")
	}
}

func TestFile_Relative(t *testing.T) {
	cases := []struct {
		f    File
		want string
	}{
		{File{Path: "new.txt"}, "new.txt"},
		{File{Cwd: "/home/contra", Path: "/home/contra/test/new.txt"}, "test/new.txt"},
		{File{Cwd: "/x", Base: "/home/contra/test", Path: "/home/contra/test/test.js"}, "test.js"},
		{File{Path: "/abs/only.js"}, "/abs/only.js"},
	}
	for _, c := range cases {
		if got := c.f.Relative(); got != c.want {
			t.Fatalf("Relative(%+v): want %q, got %q", c.f, c.want, got)
		}
	}
}

func TestFile_CloneIsDeep(t *testing.T) {
	f := &File{Path: "a.js", Contents: []byte("abc"), SourceMap: &sourcemap.Map{Version: 3, Sources: []string{"a.js"}}}
	c := f.Clone()
	c.Contents[0] = 'X'
	c.SourceMap.Sources[0] = "b.js"
	if string(f.Contents) != "abc" || f.SourceMap.Sources[0] != "a.js" {
		t.Fatal("clone shares state with original")
	}
}
