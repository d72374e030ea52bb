package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/editor"
)

// App owns the screen and routes terminal events into the editor.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	path   string
	log    *zap.Logger

	lines      []renderLine
	needLayout bool

	top         int
	status      string
	dirty       bool
	confirmQuit bool
	mouseDown   bool
	freeScroll  bool
}

func newApp(ed *editor.Editor, path string, log *zap.Logger) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open screen: %w", err)
	}
	a := &App{
		screen:     screen,
		ed:         ed,
		path:       path,
		log:        log,
		needLayout: true,
	}
	// Change events fire synchronously on the mutating call, so the
	// handler runs on the event loop goroutine.
	ed.Changes().Subscribe(func(editor.Change) {
		a.dirty = true
		a.needLayout = true
	})
	return a, nil
}

// Run drives the event loop until the user quits. The return value is
// the process exit code.
func (a *App) Run() int {
	if err := a.screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init screen: %v\n", err)
		return 1
	}
	defer a.screen.Fini()
	a.screen.EnableMouse()
	a.screen.EnablePaste()

	a.log.Info("editor started",
		zap.String("path", a.path),
		zap.Stringer("id", a.ed.ID()))

	for {
		a.layoutIfNeeded()
		a.draw()
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return 0
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		}
	}
}

func (a *App) layoutIfNeeded() {
	if a.needLayout || a.lines == nil {
		a.lines = layout(a.ed.Delta())
		a.needLayout = false
	}
}

// handleKey returns true when the user quits.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	a.status = ""
	a.freeScroll = false
	confirmed := a.confirmQuit
	a.confirmQuit = false

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		if a.dirty && !confirmed {
			a.status = "unsaved changes: Ctrl-Q again to discard, Ctrl-S to save"
			a.confirmQuit = true
			return false
		}
		return true
	case tcell.KeyCtrlS:
		a.save()
	case tcell.KeyCtrlZ:
		if !a.ed.Undo() {
			a.status = "nothing to undo"
		}
	case tcell.KeyCtrlY:
		if !a.ed.Redo() {
			a.status = "nothing to redo"
		}
	case tcell.KeyCtrlB:
		a.toggleInline("bold")
	case tcell.KeyCtrlT:
		a.toggleInline("italic")
	case tcell.KeyCtrlU:
		a.toggleInline("underline")
	case tcell.KeyCtrlD:
		a.cycleHeader()
	case tcell.KeyCtrlL:
		a.cycleList()
	case tcell.KeyCtrlG:
		a.insertDivider()
	case tcell.KeyEnter:
		a.insert("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.backspace()
	case tcell.KeyDelete:
		a.forwardDelete()
	case tcell.KeyLeft:
		a.moveHorizontal(-1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyRight:
		a.moveHorizontal(1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyUp:
		a.moveVertical(-1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyDown:
		a.moveVertical(1, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyPgUp:
		a.moveVertical(-a.pageSize(), ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyPgDn:
		a.moveVertical(a.pageSize(), ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyHome:
		a.moveLineEdge(false, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyEnd:
		a.moveLineEdge(true, ev.Modifiers()&tcell.ModShift != 0)
	case tcell.KeyRune:
		a.insert(string(ev.Rune()))
	}
	return false
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		a.top = max(0, a.top-3)
		a.freeScroll = true
	case ev.Buttons()&tcell.WheelDown != 0:
		a.top = min(max(0, len(a.lines)-1), a.top+3)
		a.freeScroll = true
	case ev.Buttons()&tcell.Button1 != 0:
		off, ok := a.offsetAt(x, y)
		if ok {
			// A drag extends from the press position.
			a.setCaret(off, a.mouseDown)
		}
		a.mouseDown = true
	default:
		a.mouseDown = false
	}
}

// Editing.

func (a *App) insert(text string) {
	sel := a.ed.Selection()
	if err := a.ed.ReplaceText(sel.Start(), sel.End()-sel.Start(), text, nil); err != nil {
		a.report("insert", err)
	}
}

func (a *App) backspace() {
	sel := a.ed.Selection()
	if !sel.IsCollapsed() {
		if err := a.ed.ReplaceText(sel.Start(), sel.End()-sel.Start(), "", nil); err != nil {
			a.report("delete", err)
		}
		return
	}
	if sel.Start() == 0 {
		return
	}
	// A one rune request is enough: the delete policies widen it to
	// the surrounding grapheme cluster when needed.
	if err := a.ed.ReplaceText(sel.Start()-1, 1, "", nil); err != nil {
		a.report("delete", err)
	}
}

func (a *App) forwardDelete() {
	sel := a.ed.Selection()
	if !sel.IsCollapsed() {
		if err := a.ed.ReplaceText(sel.Start(), sel.End()-sel.Start(), "", nil); err != nil {
			a.report("delete", err)
		}
		return
	}
	if sel.Start() >= a.ed.Length()-1 {
		return
	}
	if err := a.ed.ReplaceText(sel.Start(), 1, "", nil); err != nil {
		a.report("delete", err)
	}
}

func (a *App) toggleInline(key string) {
	var value any = true
	if a.styleActive(key) {
		value = nil
	}
	if err := a.ed.FormatSelection(key, value); err != nil {
		a.report("format", err)
	}
}

func (a *App) styleActive(key string) bool {
	sel := a.ed.Selection()
	if sel.IsCollapsed() {
		if p := a.ed.PendingStyle(); p != nil {
			if v, ok := p[key]; ok {
				return v != nil
			}
		}
	}
	attrs, err := a.ed.CollectStyle(sel.Start(), sel.End()-sel.Start())
	if err != nil {
		return false
	}
	return attrs[key] != nil
}

func (a *App) cycleHeader() {
	caret := a.ed.Selection().Start()
	info, err := a.ed.LineAt(caret)
	if err != nil {
		a.report("format", err)
		return
	}
	var next any
	switch headerLevel(info.Attributes) {
	case 0:
		next = 1
	case 1:
		next = 2
	default:
		next = nil
	}
	if err := a.ed.FormatText(caret, 0, "header", next); err != nil {
		a.report("format", err)
	}
}

func (a *App) cycleList() {
	caret := a.ed.Selection().Start()
	info, err := a.ed.LineAt(caret)
	if err != nil {
		a.report("format", err)
		return
	}
	var next any
	switch info.Attributes["list"] {
	case nil:
		next = "bullet"
	case "bullet":
		next = "ordered"
	default:
		next = nil
	}
	if err := a.ed.FormatText(caret, 0, "list", next); err != nil {
		a.report("format", err)
	}
}

func (a *App) insertDivider() {
	caret := a.ed.Selection().Start()
	if err := a.ed.InsertEmbed(caret, delta.Embed{Type: "divider", Data: "hr"}, nil); err != nil {
		a.report("insert", err)
	}
}

func (a *App) save() {
	if a.path == "" {
		a.path = "untitled.json"
	}
	raw, err := json.Marshal(a.ed.Delta())
	if err != nil {
		a.report("save", err)
		return
	}
	if err := os.WriteFile(a.path, raw, 0o644); err != nil {
		a.report("save", err)
		return
	}
	a.ed.Checkpoint()
	a.dirty = false
	a.status = "saved " + a.path
	a.log.Info("document saved",
		zap.String("path", a.path),
		zap.Int("length", a.ed.Length()))
}

func (a *App) report(action string, err error) {
	a.status = action + ": " + err.Error()
	a.log.Warn("edit rejected", zap.String("action", action), zap.Error(err))
}

// Movement.

func (a *App) caret() int { return a.ed.Selection().Head }

func (a *App) setCaret(off int, extend bool) {
	next := editor.Selection{Anchor: off, Head: off}
	if extend {
		next.Anchor = a.ed.Selection().Anchor
	}
	a.freeScroll = false
	a.ed.UpdateSelection(next, editor.SourceUser)
}

func (a *App) moveHorizontal(dx int, extend bool) {
	line, col := a.lineFor(a.caret())
	off := a.caret()
	switch {
	case dx < 0 && col == 0:
		off--
	case dx > 0 && col >= line.runes:
		off++
	default:
		off = line.start + line.graphemeStep(col, dx)
	}
	a.setCaret(max(0, min(off, a.ed.Length()-1)), extend)
}

func (a *App) moveVertical(dy int, extend bool) {
	line, col := a.lineFor(a.caret())
	idx := a.lineIndex(line.start) + dy
	idx = max(0, min(idx, len(a.lines)-1))
	target := a.lines[idx]
	// Keep the visual column, not the rune column, so the caret
	// tracks through wide characters and embeds.
	off := target.start + target.colAtWidth(line.widthBefore(col))
	a.setCaret(off, extend)
}

func (a *App) moveLineEdge(end, extend bool) {
	line, _ := a.lineFor(a.caret())
	off := line.start
	if end {
		off += line.runes
	}
	a.setCaret(off, extend)
}

func (a *App) pageSize() int {
	_, h := a.screen.Size()
	return max(1, h-2)
}
