package modules

import (
	"sync"

	"typeref/internal/shared/observability"
)

// TypedefIndex maps a module identifier (including the empty string) to the
// set of typedef names declared by every file that resolved to it. The index
// is append-only for the duration of a run.
type TypedefIndex struct {
	mu       sync.RWMutex
	byModule map[string]map[string]bool
	names    int
}

func NewTypedefIndex() *TypedefIndex {
	return &TypedefIndex{byModule: make(map[string]map[string]bool)}
}

// Record union-merges names into the module's set, creating it when this is
// the first file seen for the module. Idempotent.
func (i *TypedefIndex) Record(moduleID string, names []string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	set, ok := i.byModule[moduleID]
	if !ok {
		set = make(map[string]bool)
		i.byModule[moduleID] = set
		observability.ModulesIndexed.Set(float64(len(i.byModule)))
	}
	for _, name := range names {
		if !set[name] {
			set[name] = true
			i.names++
		}
	}
	observability.TypedefsIndexed.Set(float64(i.names))
}

// Lookup returns the typedef names known for moduleID. The second return
// distinguishes an unknown module from one with an empty set, so callers can
// skip qualification work entirely. The returned map must not be mutated.
func (i *TypedefIndex) Lookup(moduleID string) (map[string]bool, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	set, ok := i.byModule[moduleID]
	return set, ok
}

// Modules returns the number of distinct module identifiers recorded,
// including the empty "no module scope" bucket when present.
func (i *TypedefIndex) Modules() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byModule)
}

// ScopedModules returns the number of distinct module identifiers recorded,
// excluding the "no module scope" bucket. Files without a @module tag all
// land in the empty-string entry, which is not a discovered module.
func (i *TypedefIndex) ScopedModules() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n := len(i.byModule)
	if _, ok := i.byModule[""]; ok {
		n--
	}
	return n
}

// Names returns the number of typedef names recorded across all modules.
func (i *TypedefIndex) Names() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.names
}
