package delta

import "fmt"

// embedSentinel stands in for an embed when a document is flattened for
// diffing. Equal sentinels may pair different embeds (or literal U+FFFC
// text), so equal regions still compare op content before retaining.
const embedSentinel = '￼'

// maxDiffEdits bounds the edit distance the diff search explores. Edits
// beyond the budget (wholesale document rewrites) fall back to a full
// replace, which is still a correct, just non-minimal, diff.
const maxDiffEdits = 1024

// Diff returns the delta that turns document d into document other:
// retains over unchanged regions (carrying attribute diffs), inserts and
// deletes elsewhere. Both deltas must be documents (inserts only).
func (d *Delta) Diff(other *Delta) (*Delta, error) {
	aRunes, err := documentRunes(d)
	if err != nil {
		return nil, err
	}
	bRunes, err := documentRunes(other)
	if err != nil {
		return nil, err
	}
	out := New()
	if d.Equal(other) {
		return out, nil
	}
	thisIter := newIterator(d.ops)
	otherIter := newIterator(other.ops)
	for _, span := range diffRunes(aRunes, bRunes) {
		length := span.n
		for length > 0 {
			var opLength int
			switch span.kind {
			case diffInsert:
				opLength = min(otherIter.peekLength(), length)
				out.push(otherIter.next(opLength))
			case diffDelete:
				opLength = min(thisIter.peekLength(), length)
				thisIter.next(opLength)
				out.Delete(opLength)
			case diffEqual:
				opLength = min(thisIter.peekLength(), otherIter.peekLength(), length)
				thisOp := thisIter.next(opLength)
				otherOp := otherIter.next(opLength)
				if sameContent(thisOp, otherOp) {
					out.Retain(opLength, DiffAttributes(opAttributes(thisOp), opAttributes(otherOp)))
				} else {
					out.push(otherOp)
					out.Delete(opLength)
				}
			}
			length -= opLength
		}
	}
	return out.chop(), nil
}

// documentRunes flattens a document delta to runes, embeds as sentinels.
func documentRunes(d *Delta) ([]rune, error) {
	runes := make([]rune, 0, d.Length())
	for _, op := range d.ops {
		switch o := op.(type) {
		case InsertOp:
			runes = append(runes, []rune(o.Text)...)
		case InsertEmbedOp:
			runes = append(runes, embedSentinel)
		default:
			return nil, fmt.Errorf("diff requires document deltas: %w", ErrInvalidOperation)
		}
	}
	return runes, nil
}

func sameContent(a, b Op) bool {
	switch ao := a.(type) {
	case InsertOp:
		bo, ok := b.(InsertOp)
		return ok && ao.Text == bo.Text
	case InsertEmbedOp:
		bo, ok := b.(InsertEmbedOp)
		return ok && ao.Embed.Equal(bo.Embed)
	}
	return false
}

type diffKind int

const (
	diffEqual diffKind = iota
	diffDelete
	diffInsert
)

type diffSpan struct {
	kind diffKind
	n    int
}

// diffRunes computes an edit script between two rune sequences: common
// prefix and suffix are trimmed first, the middle goes through a Myers
// shortest-edit search.
func diffRunes(a, b []rune) []diffSpan {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	a, b = a[prefix:], b[prefix:]
	suffix := 0
	for suffix < len(a) && suffix < len(b) && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	a, b = a[:len(a)-suffix], b[:len(b)-suffix]

	var spans []diffSpan
	spans = appendSpan(spans, diffSpan{diffEqual, prefix})
	for _, s := range myersSpans(a, b) {
		spans = appendSpan(spans, s)
	}
	return appendSpan(spans, diffSpan{diffEqual, suffix})
}

func appendSpan(spans []diffSpan, s diffSpan) []diffSpan {
	if s.n <= 0 {
		return spans
	}
	if last := len(spans) - 1; last >= 0 && spans[last].kind == s.kind {
		spans[last].n += s.n
		return spans
	}
	return append(spans, s)
}

// myersSpans runs the greedy O(ND) shortest-edit search with a trace for
// backtracking. The trace row for round d stores only the 2d+1 reachable
// diagonals, keeping memory proportional to the edit distance squared
// rather than the input size.
func myersSpans(a, b []rune) []diffSpan {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return []diffSpan{{diffInsert, m}}
	case m == 0:
		return []diffSpan{{diffDelete, n}}
	}

	limit := min(n+m, maxDiffEdits)
	offset := limit + 1
	v := make([]int, 2*limit+3)
	trace := make([][]int, 0, limit+1)
	dFound := -1

search:
	for d := 0; d <= limit; d++ {
		row := make([]int, 2*d+1)
		for i := range row {
			row[i] = v[offset+i-d]
		}
		trace = append(trace, row)
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				dFound = d
				break search
			}
		}
	}
	if dFound < 0 {
		return []diffSpan{{diffDelete, n}, {diffInsert, m}}
	}

	// Walk the trace backwards from (n, m), emitting spans in reverse.
	var rev []diffSpan
	x, y := n, m
	for d := dFound; d > 0; d-- {
		vd := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && vd[d+k-1] < vd[d+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vd[d+prevK]
		prevY := prevX - prevK
		snake := 0
		for x > prevX && y > prevY {
			x--
			y--
			snake++
		}
		rev = appendSpan(rev, diffSpan{diffEqual, snake})
		if prevK == k+1 {
			rev = appendSpan(rev, diffSpan{diffInsert, 1})
		} else {
			rev = appendSpan(rev, diffSpan{diffDelete, 1})
		}
		x, y = prevX, prevY
	}
	rev = appendSpan(rev, diffSpan{diffEqual, x})

	out := make([]diffSpan, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = appendSpan(out, rev[i])
	}
	return out
}
