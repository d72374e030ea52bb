package main

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/editor"
)

// styledRun is a stretch of one formatting within a line. Exactly one
// of text and embed is set.
type styledRun struct {
	text  string
	attrs delta.Attributes
	embed *delta.Embed
}

// renderLine is one document line laid out for the screen. start is
// the document offset of its first position and runes its length
// without the terminator.
type renderLine struct {
	start  int
	runes  int
	runs   []styledRun
	block  delta.Attributes
	prefix string
}

// layout splits a document delta into render lines. Block attributes
// ride on each line's terminator, so the op that carries a newline
// names the line's block formatting.
func layout(d *delta.Delta) []renderLine {
	var lines []renderLine
	offset := 0
	cur := renderLine{}

	appendText := func(text string, attrs delta.Attributes) {
		if text == "" {
			return
		}
		cur.runs = append(cur.runs, styledRun{text: text, attrs: attrs})
		n := utf8.RuneCountInString(text)
		cur.runes += n
		offset += n
	}

	for _, op := range d.Ops() {
		switch o := op.(type) {
		case delta.InsertOp:
			rest := o.Text
			for {
				i := strings.IndexByte(rest, '\n')
				if i < 0 {
					appendText(rest, o.Attributes)
					break
				}
				appendText(rest[:i], o.Attributes)
				cur.block = o.Attributes
				lines = append(lines, cur)
				offset++
				cur = renderLine{start: offset}
				rest = rest[i+1:]
			}
		case delta.InsertEmbedOp:
			em := o.Embed
			cur.runs = append(cur.runs, styledRun{embed: &em, attrs: o.Attributes})
			cur.runes++
			offset++
		}
	}
	if len(lines) == 0 {
		lines = append(lines, cur)
	}
	numberLists(lines)
	return lines
}

// numberLists assigns line prefixes. Ordered items count up until the
// run of ordered lines breaks.
func numberLists(lines []renderLine) {
	n := 0
	for i := range lines {
		switch lines[i].block["list"] {
		case "ordered":
			n++
			lines[i].prefix = fmt.Sprintf("%d. ", n)
		case "bullet":
			n = 0
			lines[i].prefix = "• "
		default:
			n = 0
			if lines[i].block["blockquote"] != nil {
				lines[i].prefix = "> "
			}
		}
	}
}

// lineIndex returns the index of the line containing document offset
// off. The final terminator belongs to the last line.
func (a *App) lineIndex(off int) int {
	i := sort.Search(len(a.lines), func(j int) bool { return a.lines[j].start > off }) - 1
	return max(0, i)
}

func (a *App) lineFor(off int) (renderLine, int) {
	line := a.lines[a.lineIndex(off)]
	col := max(0, min(off-line.start, line.runes))
	return line, col
}

// boundaries lists the caret-legal rune columns of the line: zero,
// then one after each grapheme cluster or embed.
func (l renderLine) boundaries() []int {
	bounds := []int{0}
	col := 0
	for _, run := range l.runs {
		if run.embed != nil {
			col++
			bounds = append(bounds, col)
			continue
		}
		gr := uniseg.NewGraphemes(run.text)
		for gr.Next() {
			col += len(gr.Runes())
			bounds = append(bounds, col)
		}
	}
	return bounds
}

// graphemeStep moves col by dx cluster boundaries.
func (l renderLine) graphemeStep(col, dx int) int {
	b := l.boundaries()
	at := 0
	for i, v := range b {
		if v <= col {
			at = i
		}
	}
	at = max(0, min(at+dx, len(b)-1))
	return b[at]
}

// widthBefore is the display width of the line content left of rune
// column col, not counting the prefix.
func (l renderLine) widthBefore(col int) int {
	w := 0
	left := col
	for _, run := range l.runs {
		if left <= 0 {
			break
		}
		if run.embed != nil {
			w += uniseg.StringWidth(embedLabel(*run.embed))
			left--
			continue
		}
		gr := uniseg.NewGraphemes(run.text)
		for left > 0 && gr.Next() {
			w += uniseg.StringWidth(gr.Str())
			left -= len(gr.Runes())
		}
	}
	return w
}

// colAtWidth is the inverse of widthBefore: the caret column whose
// cell is at display width w.
func (l renderLine) colAtWidth(w int) int {
	if w <= 0 {
		return 0
	}
	x, col := 0, 0
	for _, run := range l.runs {
		if run.embed != nil {
			cw := uniseg.StringWidth(embedLabel(*run.embed))
			if w < x+cw {
				return col
			}
			x += cw
			col++
			continue
		}
		gr := uniseg.NewGraphemes(run.text)
		for gr.Next() {
			cw := uniseg.StringWidth(gr.Str())
			if w < x+cw {
				return col
			}
			x += cw
			col += len(gr.Runes())
		}
	}
	return l.runes
}

// Drawing.

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if w < 4 || h < 3 {
		a.screen.Show()
		return
	}
	rows := h - 2
	a.scrollIntoView(rows)

	sel := a.ed.Selection()
	for r := 0; r < rows; r++ {
		i := a.top + r
		if i >= len(a.lines) {
			break
		}
		a.drawLine(r, a.lines[i], sel, w)
	}
	a.drawStatus(w, h)

	line, col := a.lineFor(a.caret())
	cy := a.lineIndex(line.start) - a.top
	if cy >= 0 && cy < rows {
		a.screen.ShowCursor(uniseg.StringWidth(line.prefix)+line.widthBefore(col), cy)
	} else {
		a.screen.HideCursor()
	}
	a.screen.Show()
}

func (a *App) scrollIntoView(rows int) {
	if !a.freeScroll {
		idx := a.lineIndex(a.caret())
		if idx < a.top {
			a.top = idx
		}
		if idx >= a.top+rows {
			a.top = idx - rows + 1
		}
	}
	a.top = max(0, min(a.top, max(0, len(a.lines)-1)))
}

func (a *App) drawLine(row int, line renderLine, sel editor.Selection, w int) {
	x := 0
	lineStyle := blockStyle(line.block)
	for _, r := range line.prefix {
		a.screen.SetContent(x, row, r, nil, lineStyle.Dim(true))
		x += uniseg.StringWidth(string(r))
	}

	off := line.start
	for _, run := range line.runs {
		st := styleFor(run.attrs, line.block)
		if run.embed != nil {
			est := st.Dim(true)
			if off >= sel.Start() && off < sel.End() {
				est = selectionStyle()
			}
			for _, r := range embedLabel(*run.embed) {
				if x >= w {
					return
				}
				a.screen.SetContent(x, row, r, nil, est)
				x += uniseg.StringWidth(string(r))
			}
			off++
			continue
		}
		gr := uniseg.NewGraphemes(run.text)
		for gr.Next() {
			if x >= w {
				return
			}
			cst := st
			if off >= sel.Start() && off < sel.End() {
				cst = selectionStyle()
			}
			runes := gr.Runes()
			a.screen.SetContent(x, row, runes[0], runes[1:], cst)
			x += uniseg.StringWidth(gr.Str())
			off += len(runes)
		}
	}
	// The terminator is selectable too; show it as a highlighted cell.
	if !sel.IsCollapsed() && off >= sel.Start() && off < sel.End() && x < w {
		a.screen.SetContent(x, row, ' ', nil, selectionStyle())
	}
}

func (a *App) drawStatus(w, h int) {
	bar := tcell.StyleDefault.Reverse(true)
	name := a.path
	if name == "" {
		name = "[untitled]"
	}
	marker := ""
	if a.dirty {
		marker = " *"
	}
	line, col := a.lineFor(a.caret())
	stats := a.ed.Stats()
	left := fmt.Sprintf(" %s%s  %d:%d  %dw", name, marker, a.lineIndex(line.start)+1, col+1, stats.Words)
	if a.status != "" {
		left += "  " + a.status
	}
	x := a.putText(0, h-2, left, bar, w)
	for ; x < w; x++ {
		a.screen.SetContent(x, h-2, ' ', nil, bar)
	}

	flags := ""
	for _, key := range []string{"bold", "italic", "underline"} {
		if a.styleActive(key) {
			flags += strings.ToUpper(key[:1])
		} else {
			flags += "-"
		}
	}
	a.putText(max(0, w-len(flags)-1), h-2, flags, bar, w)

	help := " ^Q quit  ^S save  ^Z undo  ^Y redo  ^B bold  ^T italic  ^U underline  ^D header  ^L list  ^G divider"
	a.putText(0, h-1, help, tcell.StyleDefault.Dim(true), w)
}

func (a *App) putText(x, y int, s string, st tcell.Style, w int) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if x >= w {
			break
		}
		runes := gr.Runes()
		a.screen.SetContent(x, y, runes[0], runes[1:], st)
		x += uniseg.StringWidth(gr.Str())
	}
	return x
}

// offsetAt maps a screen cell to a document offset.
func (a *App) offsetAt(x, y int) (int, bool) {
	_, h := a.screen.Size()
	if y >= h-2 {
		return 0, false
	}
	i := a.top + y
	if i >= len(a.lines) {
		return a.ed.Length() - 1, true
	}
	line := a.lines[i]
	return line.start + line.colAtWidth(x-uniseg.StringWidth(line.prefix)), true
}

// Styling.

var (
	selBase     = mustHex("#3a5f8a")
	codeBase    = mustHex("#30343c")
	linkBase    = mustHex("#4a9eff")
	selectionBg = toTcell(selBase)
	selectionFg = contrastFg(selBase)
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// contrastFg picks black or white, whichever reads better on c.
func contrastFg(c colorful.Color) tcell.Color {
	if l, _, _ := c.Lab(); l > 0.55 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}

func selectionStyle() tcell.Style {
	return tcell.StyleDefault.Background(selectionBg).Foreground(selectionFg)
}

func blockStyle(block delta.Attributes) tcell.Style {
	st := tcell.StyleDefault
	if block == nil {
		return st
	}
	if headerLevel(block) > 0 {
		st = st.Bold(true)
	}
	if block["code-block"] != nil {
		st = st.Background(toTcell(codeBase)).Foreground(contrastFg(codeBase))
	}
	return st
}

func styleFor(attrs, block delta.Attributes) tcell.Style {
	st := blockStyle(block)
	if attrs == nil {
		return st
	}
	if attrs["bold"] != nil {
		st = st.Bold(true)
	}
	if attrs["italic"] != nil {
		st = st.Italic(true)
	}
	if attrs["underline"] != nil {
		st = st.Underline(true)
	}
	if attrs["strike"] != nil {
		st = st.StrikeThrough(true)
	}
	if attrs["code"] != nil {
		st = st.Background(toTcell(codeBase)).Foreground(contrastFg(codeBase))
	}
	if s, ok := attrs["link"].(string); ok && s != "" {
		st = st.Underline(true).Foreground(toTcell(linkBase))
	}

	var bg *colorful.Color
	if c := parseColor(attrs["background"]); c != nil {
		st = st.Background(toTcell(*c))
		bg = c
	}
	if c := parseColor(attrs["color"]); c != nil {
		st = st.Foreground(toTcell(*c))
	} else if bg != nil {
		// Keep colored highlights readable without an explicit
		// foreground.
		st = st.Foreground(contrastFg(*bg))
	}
	return st
}

func parseColor(v any) *colorful.Color {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil
	}
	return &c
}

func headerLevel(attrs delta.Attributes) int {
	switch v := attrs["header"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func embedLabel(e delta.Embed) string {
	if e.Type == "divider" {
		return "────────"
	}
	return "[" + e.Type + "]"
}
