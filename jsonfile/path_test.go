package jsonfile

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeSegment(t *testing.T) {
	cases := []struct{ key, encoded string }{
		{"title", "title"},
		{"user.name", `user\.name`},
		{"a.b.c", `a\.b\.c`},
		{"", ""},
	}
	for _, c := range cases {
		if got := EncodeSegment(c.key); got != c.encoded {
			t.Errorf("EncodeSegment(%q) = %q, want %q", c.key, got, c.encoded)
		}
		if got := DecodeSegment(c.encoded); got != c.key {
			t.Errorf("DecodeSegment(%q) = %q, want %q", c.encoded, got, c.key)
		}
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("", "menu"); got != "menu" {
		t.Errorf("JoinPath empty prefix = %q, want %q", got, "menu")
	}
	if got := JoinPath("menu", "title"); got != "menu.title" {
		t.Errorf("JoinPath = %q, want %q", got, "menu.title")
	}
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"menu", []string{"menu"}},
		{"menu.title", []string{"menu", "title"}},
		{`user\.name`, []string{`user\.name`}},
		{`a.user\.name.b`, []string{"a", `user\.name`, "b"}},
	}
	for _, c := range cases {
		if got := SplitPath(c.path); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitPath(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	keys := []string{"plain", "with.dots", "more.dots.here", "unicode ключ"}

	path := ""
	for _, k := range keys {
		path = JoinPath(path, EncodeSegment(k))
	}

	segments := SplitPath(path)
	if len(segments) != len(keys) {
		t.Fatalf("got %d segments, want %d", len(segments), len(keys))
	}
	for i, seg := range segments {
		if got := DecodeSegment(seg); got != keys[i] {
			t.Errorf("segment %d = %q, want %q", i, got, keys[i])
		}
	}
}
