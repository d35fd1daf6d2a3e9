package store

// Hooks observes Store mutations. Every method runs after the mutation has
// been applied and the store lock released, so observers see post-mutation
// state and may call back into the store. OnDelete can fire on the cache's
// cleaner goroutine; a hook must not stop that cleaner (or close the cache).
type Hooks[V any] interface {
	OnSet(key string, v V)
	OnDelete(key string)
	OnClear()
}

// NoopHooks ignores every notification. It is the default.
type NoopHooks[V any] struct{}

func (NoopHooks[V]) OnSet(string, V) {}
func (NoopHooks[V]) OnDelete(string) {}
func (NoopHooks[V]) OnClear()        {}

// HookFuncs adapts optional functions to Hooks. Nil fields are skipped.
type HookFuncs[V any] struct {
	Set    func(key string, v V)
	Delete func(key string)
	Clear  func()
}

func (h HookFuncs[V]) OnSet(key string, v V) {
	if h.Set != nil {
		h.Set(key, v)
	}
}

func (h HookFuncs[V]) OnDelete(key string) {
	if h.Delete != nil {
		h.Delete(key)
	}
}

func (h HookFuncs[V]) OnClear() {
	if h.Clear != nil {
		h.Clear()
	}
}

var (
	_ Hooks[int] = NoopHooks[int]{}
	_ Hooks[int] = HookFuncs[int]{}
)
