package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"quartz-skins/internal/ports"
)

type propertyKey struct {
	typeName string
	name     string
}

type propertyCacheEntry struct {
	desc  ports.PropertyDescriptor
	found bool
}

// PropertyResolver looks up property accessors by host type and property
// name. Lookups, including misses, are cached for the lifetime of the
// resolver; the host type surface is static so negative caching is safe.
type PropertyResolver struct {
	source ports.PropertySource

	mu    sync.RWMutex
	cache map[propertyKey]propertyCacheEntry
}

func NewPropertyResolver(source ports.PropertySource) *PropertyResolver {
	return &PropertyResolver{
		source: source,
		cache:  map[propertyKey]propertyCacheEntry{},
	}
}

func (r *PropertyResolver) Resolve(typeName string, name string) (ports.PropertyDescriptor, bool) {
	key := propertyKey{typeName: typeName, name: name}

	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return entry.desc, entry.found
	}

	desc, found := r.source.LookupProperty(typeName, name)
	r.mu.Lock()
	r.cache[key] = propertyCacheEntry{desc: desc, found: found}
	r.mu.Unlock()

	if !found {
		log.Debug().Str("type", typeName).Str("property", name).Msg("property not found, caching miss")
	}
	return desc, found
}

// CachedEntries returns the number of cached lookups.
func (r *PropertyResolver) CachedEntries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
