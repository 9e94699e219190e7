package scripting

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/data"
)

// Engine wraps a single gopher-lua VM for wave tuning.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	rng *rand.Rand
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. rng backs the randint and rand globals so scripted waves follow
// the level seed.
func NewEngine(scriptsDir string, rng *rand.Rand, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, rng: rng, log: log}
	vm.SetGlobal("randint", vm.NewFunction(e.luaRandint))
	vm.SetGlobal("rand", vm.NewFunction(e.luaRand))

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "director"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// randint(a, b) returns a uniform integer in [a, b].
func (e *Engine) luaRandint(L *lua.LState) int {
	a := L.CheckInt(1)
	b := L.CheckInt(2)
	if b < a {
		L.ArgError(2, "upper bound below lower bound")
		return 0
	}
	L.Push(lua.LNumber(a + e.rng.Intn(b-a+1)))
	return 1
}

// rand() returns a uniform float in [0, 1).
func (e *Engine) luaRand(L *lua.LState) int {
	L.Push(lua.LNumber(e.rng.Float64()))
	return 1
}

// WaveSize calls the Lua wave_size function. ok is false when the script
// has no opinion: the function is missing, fails, returns nil, or returns
// a count that is negative or not a whole number.
func (e *Engine) WaveSize(class data.Class, section, total int) (int, bool) {
	fn := e.vm.GetGlobal("wave_size")
	if fn == lua.LNil {
		return 0, false
	}

	t := e.vm.NewTable()
	t.RawSetString("class", lua.LString(class))
	t.RawSetString("section", lua.LNumber(section))
	t.RawSetString("total_sections", lua.LNumber(total))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua wave_size error", zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		if result != lua.LNil {
			e.log.Warn("lua wave_size returned non-number", zap.String("type", result.Type().String()))
		}
		return 0, false
	}
	if n < 0 {
		e.log.Warn("lua wave_size returned negative count", zap.Int("count", int(n)), zap.String("class", string(class)))
		return 0, false
	}
	if f := float64(n); f != math.Trunc(f) {
		e.log.Warn("lua wave_size returned non-integer count", zap.Float64("count", f), zap.String("class", string(class)))
		return 0, false
	}
	return int(n), true
}

// PreSpawnDelay calls the optional Lua pre_spawn_delay function.
func (e *Engine) PreSpawnDelay() (float64, bool) {
	fn := e.vm.GetGlobal("pre_spawn_delay")
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		e.log.Error("lua pre_spawn_delay error", zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || n < 0 {
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
