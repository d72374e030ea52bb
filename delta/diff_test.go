package delta

import (
	"errors"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b *Delta
		want *Delta
	}{
		{
			name: "pure insertion",
			a:    New().Insert("AB\n", nil),
			b:    New().Insert("AXB\n", nil),
			want: New().Retain(1, nil).Insert("X", nil),
		},
		{
			name: "pure deletion",
			a:    New().Insert("AXB\n", nil),
			b:    New().Insert("AB\n", nil),
			want: New().Retain(1, nil).Delete(1),
		},
		{
			name: "attribute change only",
			a:    New().Insert("Hello\n", nil),
			b:    New().Insert("Hello", Attributes{"bold": true}).Insert("\n", nil),
			want: New().Retain(5, Attributes{"bold": true}),
		},
		{
			name: "attribute removal",
			a:    New().Insert("Hello", Attributes{"bold": true}).Insert("\n", nil),
			b:    New().Insert("Hello\n", nil),
			want: New().Retain(5, Attributes{"bold": nil}),
		},
		{
			name: "equal documents",
			a:    New().Insert("same\n", Attributes{"italic": true}),
			b:    New().Insert("same\n", Attributes{"italic": true}),
			want: New(),
		},
		{
			name: "replaced embed",
			a:    New().Insert("a", nil).InsertEmbed(Embed{Type: "image", Data: "old.png"}, nil).Insert("b\n", nil),
			b:    New().Insert("a", nil).InsertEmbed(Embed{Type: "image", Data: "new.png"}, nil).Insert("b\n", nil),
			want: New().Retain(1, nil).InsertEmbed(Embed{Type: "image", Data: "new.png"}, nil).Delete(1),
		},
		{
			name: "text replaced by embed of equal flattened length",
			a:    New().Insert("a￼b\n", nil),
			b:    New().Insert("a", nil).InsertEmbed(Embed{Type: "hr", Data: true}, nil).Insert("b\n", nil),
			want: New().Retain(1, nil).InsertEmbed(Embed{Type: "hr", Data: true}, nil).Delete(1),
		},
		{
			name: "disjoint rewrite",
			a:    New().Insert("cat\n", nil),
			b:    New().Insert("dog\n", nil),
			want: New().Insert("dog", nil).Delete(3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Diff(tt.b)
			if err != nil {
				t.Fatalf("Diff: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Diff = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDiffComposeIdentity(t *testing.T) {
	docs := []*Delta{
		New().Insert("Hello World\n", nil),
		New().Insert("Hello ", Attributes{"bold": true}).Insert("brave new World\n", nil),
		New().Insert("line one\n", nil).Insert("line two", Attributes{"italic": true}).Insert("\n", Attributes{"header": 2}),
		New().Insert("before ", nil).InsertEmbed(Embed{Type: "image", Data: "pic.png"}, nil).Insert(" after\n", nil),
		New().Insert("日本語のテキスト\n", nil),
	}
	for i, a := range docs {
		for j, b := range docs {
			diff, err := a.Diff(b)
			if err != nil {
				t.Fatalf("docs[%d].Diff(docs[%d]): %v", i, j, err)
			}
			got := mustCompose(t, a, diff)
			if !got.Equal(b) {
				t.Errorf("docs[%d] + diff = %s, want docs[%d] = %s", i, got, j, b)
			}
		}
	}
}

func TestDiffRejectsNonDocuments(t *testing.T) {
	doc := New().Insert("abc\n", nil)
	change := New().Retain(1, nil).Delete(1)
	if _, err := doc.Diff(change); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("err = %v, want ErrInvalidOperation", err)
	}
	if _, err := change.Diff(doc); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("err = %v, want ErrInvalidOperation", err)
	}
}

func TestDiffRunesSpans(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []diffSpan
	}{
		{
			name: "common prefix and suffix",
			a:    "abcdef",
			b:    "abXYef",
			want: []diffSpan{{diffEqual, 2}, {diffDelete, 2}, {diffInsert, 2}, {diffEqual, 2}},
		},
		{
			name: "pure append",
			a:    "abc",
			b:    "abcdef",
			want: []diffSpan{{diffEqual, 3}, {diffInsert, 3}},
		},
		{
			name: "empty to text",
			a:    "",
			b:    "abc",
			want: []diffSpan{{diffInsert, 3}},
		},
		{
			name: "identical",
			a:    "abc",
			b:    "abc",
			want: []diffSpan{{diffEqual, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffRunes([]rune(tt.a), []rune(tt.b))
			if len(got) != len(tt.want) {
				t.Fatalf("spans = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("spans = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
