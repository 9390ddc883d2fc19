package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mandelbrottt/Yr2-Engine/internal/core/ecs"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the global API_VERSION.
const APIVersion = 1

var (
	ErrNoTable = errors.New("script table not defined")
	ErrNoWorld = errors.New("script engine not bound to a world")
)

// Engine wraps a single gopher-lua VM running gameplay scripts. Each script
// defines a global table whose functions are the entity hooks:
//
//	Spinner = {}
//	function Spinner.on_update(entity, dt) ... end
//	function Spinner.on_collision_enter(entity, other, x, y, z) ... end
//
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	world *ecs.World
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
// A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) Close() { e.vm.Close() }

// SetWorld binds the entity API to w. Nil unbinds it.
func (e *Engine) SetWorld(w *ecs.World) { e.world = w }

// loadDir loads all .lua files in a directory tree, in lexical order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := e.loadDir(path); err != nil {
				return err
			}
			continue
		}
		if filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs src as a chunk named name.
func (e *Engine) LoadString(name, src string) error {
	fn, err := e.vm.LoadString(src)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// HasTable reports whether a global script table is defined.
func (e *Engine) HasTable(table string) bool {
	_, ok := e.vm.GetGlobal(table).(*lua.LTable)
	return ok
}

// CallUpdate runs table.on_update(entity, dt). A table without the hook is
// not an error.
func (e *Engine) CallUpdate(table string, id ecs.EntityID, dt float64) error {
	return e.call(table, "on_update", entityValue(id), lua.LNumber(dt))
}

// CallContact runs a contact hook such as on_collision_enter with the
// other entity and the contact point.
func (e *Engine) CallContact(table, hook string, id, other ecs.EntityID, point mgl32.Vec3) error {
	return e.call(table, hook,
		entityValue(id), entityValue(other),
		lua.LNumber(point[0]), lua.LNumber(point[1]), lua.LNumber(point[2]),
	)
}

func (e *Engine) call(table, hook string, args ...lua.LValue) error {
	t, ok := e.vm.GetGlobal(table).(*lua.LTable)
	if !ok {
		return fmt.Errorf("call %s.%s: %w", table, hook, ErrNoTable)
	}
	fn, ok := t.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("call %s.%s: %w", table, hook, err)
	}
	return nil
}

// Global returns a global as a Go value: numbers as float64, strings, bools
// and nil. Other types come back as their Lua string form.
func (e *Engine) Global(name string) any {
	switch v := e.vm.GetGlobal(name).(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	case *lua.LNilType:
		return nil
	default:
		return v.String()
	}
}

func entityValue(id ecs.EntityID) lua.LValue { return lua.LNumber(uint64(id)) }
