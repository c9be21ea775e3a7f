package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

// CookieJar mirrors the content engine's cookie store as domain -> name -> value.
// It is written only from engine add/remove notifications and may lag the
// engine between a mutation and its event.
type CookieJar struct {
	mu      sync.RWMutex
	domains map[string]map[string]string
	log     zerolog.Logger
}

// NewCookieJar creates an empty jar. ctx carries the logger.
func NewCookieJar(ctx context.Context) *CookieJar {
	return &CookieJar{
		domains: make(map[string]map[string]string),
		log:     logging.Component(ctx, "cookie-jar"),
	}
}

// Add upserts a cookie. Last writer wins.
func (j *CookieJar) Add(domain, name, value string) {
	j.mu.Lock()
	names, ok := j.domains[domain]
	if !ok {
		names = make(map[string]string)
		j.domains[domain] = names
	}
	names[name] = value
	j.mu.Unlock()

	// values are never logged
	j.log.Debug().Str("domain", domain).Str("name", name).Msg("cookie added")
}

// Remove deletes a cookie. Missing domains and names are ignored.
func (j *CookieJar) Remove(domain, name string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	names, ok := j.domains[domain]
	if !ok {
		return
	}
	if _, ok := names[name]; !ok {
		return
	}
	delete(names, name)
	if len(names) == 0 {
		delete(j.domains, domain)
	}
	j.log.Debug().Str("domain", domain).Str("name", name).Msg("cookie removed")
}

// Get returns the cached value for (domain, name).
func (j *CookieJar) Get(domain, name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	value, ok := j.domains[domain][name]
	return value, ok
}

// Domain returns a copy of every cookie cached for domain, or nil.
func (j *CookieJar) Domain(domain string) map[string]string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	names, ok := j.domains[domain]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(names))
	for k, v := range names {
		out[k] = v
	}
	return out
}

// Len returns the number of cached cookies.
func (j *CookieJar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := 0
	for _, names := range j.domains {
		n += len(names)
	}
	return n
}

// Snapshot returns every cached cookie sorted by domain then name.
func (j *CookieJar) Snapshot() []entity.Cookie {
	j.mu.RLock()
	out := make([]entity.Cookie, 0, len(j.domains))
	for domain, names := range j.domains {
		for name, value := range names {
			out = append(out, entity.Cookie{Domain: domain, Name: name, Value: value})
		}
	}
	j.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].Domain != out[b].Domain {
			return out[a].Domain < out[b].Domain
		}
		return out[a].Name < out[b].Name
	})
	return out
}
