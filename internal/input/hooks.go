package input

import (
	"sync"

	"github.com/dshills/keyroute/internal/input/key"
)

// PreHook runs before an event is dispatched. Returning true consumes
// the event and stops all further processing.
type PreHook func(e key.Event) bool

// PostHook runs after an event has been dispatched with its outcome.
type PostHook func(e key.Event, status Status)

// HookID identifies a registered hook for removal.
type HookID uint64

type preHookEntry struct {
	id   HookID
	hook PreHook
}

type postHookEntry struct {
	id   HookID
	hook PostHook
}

// Hooks manages interception points around dispatch. Hooks run in
// registration order.
type Hooks struct {
	mu     sync.RWMutex
	nextID HookID
	pre    []preHookEntry
	post   []postHookEntry
}

// NewHooks creates an empty hook set.
func NewHooks() *Hooks {
	return &Hooks{}
}

// AddPre registers a pre-dispatch hook.
func (h *Hooks) AddPre(hook PreHook) HookID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.pre = append(h.pre, preHookEntry{id: h.nextID, hook: hook})
	return h.nextID
}

// AddPost registers a post-dispatch hook.
func (h *Hooks) AddPost(hook PostHook) HookID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.post = append(h.post, postHookEntry{id: h.nextID, hook: hook})
	return h.nextID
}

// Remove unregisters a hook by id. Unknown ids are ignored.
func (h *Hooks) Remove(id HookID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.pre {
		if e.id == id {
			h.pre = append(h.pre[:i], h.pre[i+1:]...)
			return
		}
	}
	for i, e := range h.post {
		if e.id == id {
			h.post = append(h.post[:i], h.post[i+1:]...)
			return
		}
	}
}

// runPre runs pre-hooks in order; true means a hook consumed the event.
func (h *Hooks) runPre(e key.Event) bool {
	h.mu.RLock()
	hooks := make([]preHookEntry, len(h.pre))
	copy(hooks, h.pre)
	h.mu.RUnlock()

	for _, entry := range hooks {
		if entry.hook(e) {
			return true
		}
	}
	return false
}

// runPost runs post-hooks in order.
func (h *Hooks) runPost(e key.Event, status Status) {
	h.mu.RLock()
	hooks := make([]postHookEntry, len(h.post))
	copy(hooks, h.post)
	h.mu.RUnlock()

	for _, entry := range hooks {
		entry.hook(e, status)
	}
}
