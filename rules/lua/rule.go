package lua

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/rules"
)

// DefaultTimeout bounds one apply call. Policies run on every
// keystroke, so the bound is tight; gopher-lua checks the state's
// context between instructions, so it holds even for scripts that
// never call back into Go.
const DefaultTimeout = 50 * time.Millisecond

// Rule is a rules.Rule backed by a Lua script.
//
// The interpreter is not goroutine-safe; a mutex serializes apply
// calls. A call aborted by its deadline leaves the interpreter
// unusable, so the rule rebuilds it from source before the next call.
type Rule struct {
	name    string
	source  string
	kind    rules.Kind
	log     *zap.Logger
	timeout time.Duration

	mu sync.Mutex
	ls *lua.LState
}

// Option configures a Rule.
type Option func(*Rule)

// WithLogger attaches a logger for script failures. Defaults to a nop
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Rule) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTimeout bounds each apply call.
func WithTimeout(d time.Duration) Option {
	return func(r *Rule) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Load reads a rule script from disk. The rule is named after the
// file.
func Load(path string, opts ...Option) (*Rule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rule script: %w", err)
	}
	return LoadScript(filepath.Base(path), string(src), opts...)
}

// LoadScript compiles source as a rule. The script's top level must
// set the global kind to insert, delete, or format and define an
// apply function.
func LoadScript(name, source string, opts ...Option) (*Rule, error) {
	r := &Rule{
		name:    name,
		source:  source,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	ls, err := r.newState()
	if err != nil {
		return nil, err
	}
	kind, err := declaredKind(ls)
	if err != nil {
		ls.Close()
		return nil, fmt.Errorf("rule script %s: %w", name, err)
	}
	r.kind = kind
	r.ls = ls
	return r, nil
}

// Install loads each script and registers it on its declared chain.
// Scripts that fail to load are collected into the joined error; the
// rest still install.
func Install(e *rules.Engine, paths []string, opts ...Option) ([]*Rule, error) {
	var loaded []*Rule
	var errs []error
	for _, path := range paths {
		r, err := Load(path, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.Register(r.Kind(), r)
		loaded = append(loaded, r)
	}
	return loaded, errors.Join(errs...)
}

// Name returns the rule's label, usually the script file name.
func (r *Rule) Name() string { return r.name }

// Kind returns the chain the script declared.
func (r *Rule) Kind() rules.Kind { return r.kind }

// Close releases the interpreter. A closed rule passes every request.
func (r *Rule) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ls != nil {
		r.ls.Close()
		r.ls = nil
	}
}

// Apply runs the script's apply function. A script failure, timeout,
// or malformed result passes the request down the chain rather than
// failing the edit.
func (r *Rule) Apply(ctx *rules.Context) (*delta.Delta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ls == nil {
		return nil, nil
	}

	req := requestTable(r.ls, ctx.Request)
	doc := documentTable(r.ls, ctx.Doc)

	lctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.ls.SetContext(lctx)
	err := r.ls.CallByParam(lua.P{
		Fn:      r.ls.GetGlobal("apply"),
		NRet:    1,
		Protect: true,
	}, req, doc)
	r.ls.RemoveContext()

	if err != nil {
		r.log.Warn("rule script failed",
			zap.String("script", r.name),
			zap.Error(err))
		if lctx.Err() != nil {
			// An aborted call leaves the interpreter unusable.
			r.rebuild()
		}
		return nil, nil
	}

	ret := r.ls.Get(-1)
	r.ls.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		d, err := opsToDelta(v)
		if err != nil {
			r.log.Warn("rule script returned malformed operations",
				zap.String("script", r.name),
				zap.Error(err))
			return nil, nil
		}
		return d, nil
	default:
		r.log.Warn("rule script returned unexpected value",
			zap.String("script", r.name),
			zap.String("type", v.Type().String()))
		return nil, nil
	}
}

func (r *Rule) rebuild() {
	r.ls.Close()
	ls, err := r.newState()
	if err != nil {
		r.log.Error("rule script rebuild failed, disabling",
			zap.String("script", r.name),
			zap.Error(err))
		r.ls = nil
		return
	}
	r.ls = ls
}

// newState builds a fresh sandboxed interpreter and runs the script's
// top level under the same deadline as an apply call.
func (r *Rule) newState() (*lua.LState, error) {
	ls := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSandboxed(ls)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	ls.SetContext(ctx)
	err := ls.DoString(r.source)
	ls.RemoveContext()
	cancel()
	if err != nil {
		ls.Close()
		return nil, fmt.Errorf("rule script %s: %w", r.name, err)
	}

	if fn := ls.GetGlobal("apply"); fn.Type() != lua.LTFunction {
		ls.Close()
		return nil, fmt.Errorf("rule script %s: apply is %s, want a function", r.name, fn.Type())
	}
	return ls, nil
}

// declaredKind reads the script's kind global.
func declaredKind(ls *lua.LState) (rules.Kind, error) {
	v := ls.GetGlobal("kind")
	s, ok := v.(lua.LString)
	if !ok {
		return 0, fmt.Errorf("kind is %s, want one of insert, delete, format", v.Type())
	}
	switch string(s) {
	case "insert":
		return rules.KindInsert, nil
	case "delete":
		return rules.KindDelete, nil
	case "format":
		return rules.KindFormat, nil
	}
	return 0, fmt.Errorf("kind is %q, want one of insert, delete, format", string(s))
}
