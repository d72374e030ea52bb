package document

import (
	"errors"
	"testing"

	"github.com/inkwell-editor/inkwell/delta"
)

func TestNewDocument(t *testing.T) {
	d := New()
	if got := d.Length(); got != 1 {
		t.Fatalf("Length() = %d, want 1", got)
	}
	if got := d.PlainText(); got != "" {
		t.Fatalf("PlainText() = %q, want empty", got)
	}
	want := delta.New().Insert("\n", nil)
	if !d.Delta().Equal(want) {
		t.Fatalf("Delta() = %s, want %s", d.Delta(), want)
	}
}

func TestFromDelta(t *testing.T) {
	tests := []struct {
		name      string
		src       *delta.Delta
		length    int
		plainText string
	}{
		{
			name:      "single line",
			src:       delta.New().Insert("hello\n", nil),
			length:    6,
			plainText: "hello",
		},
		{
			name:      "two lines",
			src:       delta.New().Insert("one\ntwo\n", nil),
			length:    8,
			plainText: "one\ntwo",
		},
		{
			name:      "missing trailing newline gains one",
			src:       delta.New().Insert("dangling", nil),
			length:    9,
			plainText: "dangling",
		},
		{
			name: "styled runs and header",
			src: delta.New().
				Insert("Title", delta.Attributes{"bold": true}).
				Insert("\n", delta.Attributes{"header": 1}).
				Insert("body\n", nil),
			length:    11,
			plainText: "Title\nbody",
		},
		{
			name: "embed line",
			src: delta.New().
				InsertEmbed(delta.Embed{Type: "image", Data: "a.png"}, nil).
				Insert("\n", nil),
			length:    2,
			plainText: "￼",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromDelta(tt.src)
			if err != nil {
				t.Fatalf("FromDelta() error: %v", err)
			}
			if got := d.Length(); got != tt.length {
				t.Errorf("Length() = %d, want %d", got, tt.length)
			}
			if got := d.PlainText(); got != tt.plainText {
				t.Errorf("PlainText() = %q, want %q", got, tt.plainText)
			}
		})
	}
}

func TestFromDeltaRejectsNonInserts(t *testing.T) {
	for _, src := range []*delta.Delta{
		delta.New().Retain(3, nil),
		delta.New().Insert("a", nil).Delete(1),
	} {
		if _, err := FromDelta(src); !errors.Is(err, delta.ErrInvalidOperation) {
			t.Errorf("FromDelta(%s) error = %v, want ErrInvalidOperation", src, err)
		}
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	srcs := []*delta.Delta{
		delta.New().Insert("\n", nil),
		delta.New().Insert("plain\n", nil),
		delta.New().
			Insert("bold", delta.Attributes{"bold": true}).
			Insert(" and ", nil).
			Insert("italic", delta.Attributes{"italic": true}).
			Insert("\n", nil),
		delta.New().
			Insert("heading", nil).
			Insert("\n", delta.Attributes{"header": 2}).
			Insert("item", nil).
			Insert("\n", delta.Attributes{"list": "bullet"}).
			Insert("\n", nil),
		delta.New().
			Insert("see ", nil).
			InsertEmbed(delta.Embed{Type: "image", Data: map[string]any{"src": "x.png"}}, delta.Attributes{"link": "https://example.com"}).
			Insert("\n", nil),
	}
	for _, src := range srcs {
		d, err := FromDelta(src)
		if err != nil {
			t.Fatalf("FromDelta(%s) error: %v", src, err)
		}
		if got := d.Delta(); !got.Equal(src) {
			t.Errorf("round trip:\n in  %s\n out %s", src, got)
		}
	}
}

func TestTextAt(t *testing.T) {
	d, err := FromDelta(delta.New().Insert("hello\nworld\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}
	tests := []struct {
		offset, length int
		want           string
		wantErr        bool
	}{
		{0, 5, "hello", false},
		{3, 5, "lo\nwo", false},
		{6, 5, "world", false},
		{11, 1, "\n", false},
		{0, 12, "hello\nworld\n", false},
		{0, 13, "", true},
		{-1, 2, "", true},
	}
	for _, tt := range tests {
		got, err := d.TextAt(tt.offset, tt.length)
		if tt.wantErr {
			if !errors.Is(err, delta.ErrOutOfRange) {
				t.Errorf("TextAt(%d, %d) error = %v, want ErrOutOfRange", tt.offset, tt.length, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("TextAt(%d, %d) error: %v", tt.offset, tt.length, err)
			continue
		}
		if got != tt.want {
			t.Errorf("TextAt(%d, %d) = %q, want %q", tt.offset, tt.length, got, tt.want)
		}
	}
}

func TestLineAt(t *testing.T) {
	d, err := FromDelta(delta.New().
		Insert("one", nil).
		Insert("\n", delta.Attributes{"header": 1}).
		Insert("two\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}

	info, err := d.LineAt(2)
	if err != nil {
		t.Fatalf("LineAt(2) error: %v", err)
	}
	if info.Start != 0 || info.Length != 4 || info.Text != "one" {
		t.Errorf("LineAt(2) = %+v, want start 0 length 4 text %q", info, "one")
	}
	if !info.Attributes.Equal(delta.Attributes{"header": 1}) {
		t.Errorf("LineAt(2) attributes = %v, want header 1", info.Attributes)
	}

	info, err = d.LineAt(4)
	if err != nil {
		t.Fatalf("LineAt(4) error: %v", err)
	}
	if info.Start != 4 || info.Text != "two" {
		t.Errorf("LineAt(4) = %+v, want start 4 text %q", info, "two")
	}

	// The terminator belongs to its line.
	info, err = d.LineAt(3)
	if err != nil {
		t.Fatalf("LineAt(3) error: %v", err)
	}
	if info.Start != 0 {
		t.Errorf("LineAt(3).Start = %d, want 0", info.Start)
	}

	if _, err := d.LineAt(8); !errors.Is(err, delta.ErrOutOfRange) {
		t.Errorf("LineAt(8) error = %v, want ErrOutOfRange", err)
	}
}

func TestEmbedAt(t *testing.T) {
	d, err := FromDelta(delta.New().
		Insert("pic: ", nil).
		InsertEmbed(delta.Embed{Type: "image", Data: "a.png"}, nil).
		Insert("\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}
	em, ok := d.EmbedAt(5)
	if !ok {
		t.Fatal("EmbedAt(5) = not found, want image embed")
	}
	if em.Type != "image" {
		t.Errorf("EmbedAt(5).Type = %q, want %q", em.Type, "image")
	}
	if _, ok := d.EmbedAt(0); ok {
		t.Error("EmbedAt(0) found an embed on plain text")
	}
	if _, ok := d.EmbedAt(6); ok {
		t.Error("EmbedAt(6) found an embed on the terminator")
	}
}

func TestDocumentEqual(t *testing.T) {
	a, err := FromDelta(delta.New().Insert("same\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}
	b, err := FromDelta(delta.New().Insert("same\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}
	c, err := FromDelta(delta.New().Insert("different\n", nil))
	if err != nil {
		t.Fatalf("FromDelta() error: %v", err)
	}
	if !a.Equal(b) {
		t.Error("identical documents compare unequal")
	}
	if a.Equal(c) {
		t.Error("different documents compare equal")
	}
}
