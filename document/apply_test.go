package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/inkwell-editor/inkwell/delta"
)

func mustDoc(t *testing.T, src *delta.Delta) *Document {
	t.Helper()
	d, err := FromDelta(src)
	if err != nil {
		t.Fatalf("FromDelta(%s) error: %v", src, err)
	}
	return d
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name   string
		src    *delta.Delta
		change *delta.Delta
		want   *delta.Delta
	}{
		{
			name:   "insert text mid line",
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(2, nil).Insert("XY", nil),
			want:   delta.New().Insert("heXYllo\n", nil),
		},
		{
			name:   "insert styled run",
			src:    delta.New().Insert("ab\n", nil),
			change: delta.New().Retain(1, nil).Insert("X", delta.Attributes{"bold": true}),
			want: delta.New().
				Insert("a", nil).
				Insert("X", delta.Attributes{"bold": true}).
				Insert("b\n", nil),
		},
		{
			name: "plain newline splits a header line",
			src: delta.New().
				Insert("alpha", nil).
				Insert("\n", delta.Attributes{"header": 1}),
			change: delta.New().Retain(2, nil).Insert("\n", nil),
			want: delta.New().
				Insert("al\npha", nil).
				Insert("\n", delta.Attributes{"header": 1}),
		},
		{
			name: "attributed newline carries the style to the first half",
			src: delta.New().
				Insert("alpha", nil).
				Insert("\n", delta.Attributes{"header": 1}),
			change: delta.New().Retain(2, nil).Insert("\n", delta.Attributes{"header": 1}),
			want: delta.New().
				Insert("al", nil).
				Insert("\n", delta.Attributes{"header": 1}).
				Insert("pha", nil).
				Insert("\n", delta.Attributes{"header": 1}),
		},
		{
			name: "deleting a terminator merges onto the next line's style",
			src: delta.New().
				Insert("one", nil).
				Insert("\n", delta.Attributes{"header": 1}).
				Insert("two\n", nil),
			change: delta.New().Retain(3, nil).Delete(1),
			want:   delta.New().Insert("onetwo\n", nil),
		},
		{
			name:   "delete within a line",
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(1, nil).Delete(3),
			want:   delta.New().Insert("ho\n", nil),
		},
		{
			name:   "delete spanning a terminator",
			src:    delta.New().Insert("one\ntwo\n", nil),
			change: delta.New().Retain(2, nil).Delete(3),
			want:   delta.New().Insert("onwo\n", nil),
		},
		{
			name:   "retain applies inline formatting",
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(2, delta.Attributes{"bold": true}),
			want: delta.New().
				Insert("he", delta.Attributes{"bold": true}).
				Insert("llo\n", nil),
		},
		{
			name:   "retain applies block formatting to the terminator",
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(5, nil).Retain(1, delta.Attributes{"header": 2}),
			want: delta.New().
				Insert("hello", nil).
				Insert("\n", delta.Attributes{"header": 2}),
		},
		{
			name:   "inline attribute on a terminator is ignored",
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(5, nil).Retain(1, delta.Attributes{"bold": true}),
			want:   delta.New().Insert("hello\n", nil),
		},
		{
			name: "nil attribute value removes formatting",
			src: delta.New().
				Insert("he", delta.Attributes{"bold": true}).
				Insert("llo\n", nil),
			change: delta.New().Retain(2, delta.Attributes{"bold": nil}),
			want:   delta.New().Insert("hello\n", nil),
		},
		{
			name:   "multi line insert",
			src:    delta.New().Insert("ab\n", nil),
			change: delta.New().Retain(1, nil).Insert("x\ny\nz", nil),
			want:   delta.New().Insert("ax\ny\nzb\n", nil),
		},
		{
			name:   "embed insert",
			src:    delta.New().Insert("ab\n", nil),
			change: delta.New().Retain(1, nil).InsertEmbed(delta.Embed{Type: "image", Data: "a.png"}, nil),
			want: delta.New().
				Insert("a", nil).
				InsertEmbed(delta.Embed{Type: "image", Data: "a.png"}, nil).
				Insert("b\n", nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustDoc(t, tt.src)
			if _, err := d.ApplyDelta(tt.change); err != nil {
				t.Fatalf("ApplyDelta(%s) error: %v", tt.change, err)
			}
			if got := d.Delta(); !got.Equal(tt.want) {
				t.Errorf("after %s:\n got  %s\n want %s", tt.change, got, tt.want)
			}
		})
	}
}

// Tree application and delta composition must describe the same edit.
func TestApplyDeltaMatchesCompose(t *testing.T) {
	tests := []struct {
		src    *delta.Delta
		change *delta.Delta
	}{
		{
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(2, nil).Insert("XY", delta.Attributes{"italic": true}),
		},
		{
			src: delta.New().
				Insert("one", nil).
				Insert("\n", delta.Attributes{"header": 1}).
				Insert("two\n", nil),
			change: delta.New().Retain(3, nil).Delete(1),
		},
		{
			src:    delta.New().Insert("ab\n", nil),
			change: delta.New().Retain(1, nil).Insert("x\ny\nz", nil),
		},
		{
			src:    delta.New().Insert("hello\n", nil),
			change: delta.New().Retain(1, delta.Attributes{"bold": true}).Retain(4, nil).Retain(1, delta.Attributes{"header": 2}),
		},
		{
			src:    delta.New().Insert("cut me\n", nil),
			change: delta.New().Retain(3, nil).Delete(3),
		},
	}
	for _, tt := range tests {
		d := mustDoc(t, tt.src)
		if _, err := d.ApplyDelta(tt.change); err != nil {
			t.Fatalf("ApplyDelta(%s) error: %v", tt.change, err)
		}
		composed, err := tt.src.Compose(tt.change)
		if err != nil {
			t.Fatalf("Compose(%s) error: %v", tt.change, err)
		}
		if got := d.Delta(); !got.Equal(composed) {
			t.Errorf("apply and compose disagree for %s:\n tree    %s\n compose %s", tt.change, got, composed)
		}
	}
}

func TestApplyDeltaChangeResult(t *testing.T) {
	d := mustDoc(t, delta.New().Insert("hello\n", nil))
	res, err := d.ApplyDelta(delta.New().Retain(2, nil).Insert("XY", nil))
	if err != nil {
		t.Fatalf("ApplyDelta() error: %v", err)
	}
	want := ChangeResult{OldLength: 6, NewLength: 8, Start: 2, End: 4}
	if res != want {
		t.Errorf("ChangeResult = %+v, want %+v", res, want)
	}

	res, err = d.ApplyDelta(delta.New().Retain(1, nil).Delete(3))
	if err != nil {
		t.Fatalf("ApplyDelta() error: %v", err)
	}
	want = ChangeResult{OldLength: 8, NewLength: 5, Start: 1, End: 1}
	if res != want {
		t.Errorf("ChangeResult = %+v, want %+v", res, want)
	}
}

func TestApplyDeltaRejects(t *testing.T) {
	tests := []struct {
		name    string
		change  *delta.Delta
		wantErr error
	}{
		{
			name:    "delete covering the final terminator",
			change:  delta.New().Retain(2, nil).Delete(1),
			wantErr: delta.ErrInvalidOperation,
		},
		{
			name:    "delete running past the end",
			change:  delta.New().Delete(3),
			wantErr: delta.ErrInvalidOperation,
		},
		{
			name:    "base length beyond the document",
			change:  delta.New().Retain(5, nil).Insert("x", nil),
			wantErr: delta.ErrLengthMismatch,
		},
		{
			name:    "insert after the final terminator",
			change:  delta.New().Retain(3, nil).Insert("x", nil),
			wantErr: delta.ErrInvalidOperation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustDoc(t, delta.New().Insert("hi\n", nil))
			before := d.Delta()
			if _, err := d.ApplyDelta(tt.change); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ApplyDelta(%s) error = %v, want %v", tt.change, err, tt.wantErr)
			}
			if got := d.Delta(); !got.Equal(before) {
				t.Errorf("document changed after rejected delta:\n got  %s\n want %s", got, before)
			}
		})
	}
}

func BenchmarkApplyDelta(b *testing.B) {
	src := delta.New().Insert(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)+"\n", nil)
	doc, err := FromDelta(src)
	if err != nil {
		b.Fatal(err)
	}
	// Five runes out, five in: the document length is stable, so the
	// same change stays valid across iterations.
	change := delta.New().Retain(1000, nil).Delete(5).Insert("typed", delta.Attributes{"bold": true})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := doc.ApplyDelta(change); err != nil {
			b.Fatal(err)
		}
	}
}
