package delta

import "testing"

func TestTransform(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Delta
		priority bool
		want     *Delta
	}{
		{
			name:     "insert vs insert with priority",
			a:        New().Insert("A", nil),
			b:        New().Insert("B", nil),
			priority: true,
			want:     New().Retain(1, nil).Insert("B", nil),
		},
		{
			name: "insert vs insert without priority",
			a:    New().Insert("A", nil),
			b:    New().Insert("B", nil),
			want: New().Insert("B", nil),
		},
		{
			name:     "insert vs retain",
			a:        New().Insert("A", nil),
			b:        New().Retain(1, Attributes{"bold": true}),
			priority: true,
			want:     New().Retain(1, nil).Retain(1, Attributes{"bold": true}),
		},
		{
			name:     "insert vs delete",
			a:        New().Insert("A", nil),
			b:        New().Delete(1),
			priority: true,
			want:     New().Retain(1, nil).Delete(1),
		},
		{
			name: "delete vs insert",
			a:    New().Delete(1),
			b:    New().Insert("B", nil),
			want: New().Insert("B", nil),
		},
		{
			name: "delete vs delete cancels",
			a:    New().Delete(1),
			b:    New().Delete(1),
			want: New(),
		},
		{
			name:     "conflicting retain attributes with priority",
			a:        New().Retain(1, Attributes{"color": "blue"}),
			b:        New().Retain(1, Attributes{"color": "red", "bold": true}),
			priority: true,
			want:     New().Retain(1, Attributes{"bold": true}),
		},
		{
			name: "conflicting retain attributes without priority",
			a:    New().Retain(1, Attributes{"color": "blue"}),
			b:    New().Retain(1, Attributes{"color": "red", "bold": true}),
			want: New().Retain(1, Attributes{"color": "red", "bold": true}),
		},
		{
			name:     "delete shifts later retain",
			a:        New().Retain(2, nil).Delete(3),
			b:        New().Retain(5, nil).Insert("X", nil),
			priority: true,
			want:     New().Retain(2, nil).Insert("X", nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Transform(tt.b, tt.priority)
			if !got.Equal(tt.want) {
				t.Errorf("Transform = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTransformConvergence(t *testing.T) {
	// Both orders of applying two same-base deltas must converge on the
	// same document once each is rebased over the other.
	base := New().Insert("Hello World\n", nil)
	pairs := []struct {
		name string
		a, b *Delta
	}{
		{
			name: "insert vs insert",
			a:    New().Retain(5, nil).Insert("A", nil),
			b:    New().Retain(5, nil).Insert("B", Attributes{"bold": true}),
		},
		{
			name: "insert vs overlapping delete",
			a:    New().Retain(3, nil).Insert("xyz", nil),
			b:    New().Retain(2, nil).Delete(4),
		},
		{
			name: "format vs delete",
			a:    New().Retain(6, Attributes{"italic": true}),
			b:    New().Delete(8),
		},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			aFirst := mustCompose(t, mustCompose(t, base, tt.a), tt.a.Transform(tt.b, true))
			bFirst := mustCompose(t, mustCompose(t, base, tt.b), tt.b.Transform(tt.a, false))
			if !aFirst.Equal(bFirst) {
				t.Errorf("a-first %s != b-first %s", aFirst, bFirst)
			}
		})
	}
}

func TestTransformPosition(t *testing.T) {
	tests := []struct {
		name     string
		d        *Delta
		index    int
		priority bool
		want     int
	}{
		{
			name:  "insert before moves position right",
			d:     New().Retain(2, nil).Insert("AB", nil),
			index: 5,
			want:  7,
		},
		{
			name:  "insert after leaves position",
			d:     New().Retain(8, nil).Insert("AB", nil),
			index: 5,
			want:  5,
		},
		{
			name:  "insert at position without priority moves it",
			d:     New().Retain(5, nil).Insert("AB", nil),
			index: 5,
			want:  7,
		},
		{
			name:     "insert at position with priority keeps it",
			d:        New().Retain(5, nil).Insert("AB", nil),
			index:    5,
			priority: true,
			want:     5,
		},
		{
			name:  "delete before moves position left",
			d:     New().Delete(3),
			index: 5,
			want:  2,
		},
		{
			name:  "delete across position clamps to delete start",
			d:     New().Retain(2, nil).Delete(4),
			index: 4,
			want:  2,
		},
		{
			name:  "delete after leaves position",
			d:     New().Retain(6, nil).Delete(2),
			index: 5,
			want:  5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.TransformPosition(tt.index, tt.priority); got != tt.want {
				t.Errorf("TransformPosition(%d) = %d, want %d", tt.index, got, tt.want)
			}
		})
	}
}
