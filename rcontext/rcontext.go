// Package rcontext holds the per-unit annotation context: a topic label plus
// custom key/value entries that follow a logical request across process and
// worker boundaries.
//
// A Context belongs to exactly one logical execution unit (HTTP request,
// message delivery, workflow or activity invocation). Units install their own
// store with WithNew; the store is never shared between concurrent units.
package rcontext

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ourritual/sdk-go/keys"
)

type ctxKey struct{}

// Context is the annotation store for a single logical execution unit.
// The zero value via New is empty and ready to use.
type Context struct {
	mu     sync.RWMutex
	topic  *string
	custom map[string]any
}

// New returns an empty Context.
func New() *Context {
	return &Context{}
}

// WithNew installs a fresh Context for a new logical unit.
func WithNew(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, New())
}

// WithContext installs c as the unit's Context.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the unit's Context. If none has been installed it
// returns a detached empty Context, so callers never need a nil check;
// mutations on a detached store are only visible to its holder.
func FromContext(ctx context.Context) *Context {
	if c, ok := Lookup(ctx); ok {
		return c
	}
	return New()
}

// Lookup returns the installed Context and whether one was present.
func Lookup(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok
}

// SetTopic replaces the topic label. Returns the Context for chaining.
func (c *Context) SetTopic(topic string) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = &topic
	return c
}

// SetCustom upserts one custom entry, overwriting any existing value for key.
// Returns the Context for chaining.
func (c *Context) SetCustom(key string, value any) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.custom == nil {
		c.custom = make(map[string]any)
	}
	c.custom[key] = value
	return c
}

// Topic returns the topic label and whether one is set.
func (c *Context) Topic() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.topic == nil {
		return "", false
	}
	return *c.topic, true
}

// Custom returns a copy of the custom entries, or nil if none are set.
func (c *Context) Custom() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.custom == nil {
		return nil
	}
	out := make(map[string]any, len(c.custom))
	for k, v := range c.custom {
		out[k] = v
	}
	return out
}

// ToMap flattens the topic and custom entries into the namespaced
// string-to-string form used on the wire. Entries with nil values are
// excluded; everything else is stringified. The result is a point-in-time
// snapshot: later mutations do not affect it.
func (c *Context) ToMap() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string)
	if c.topic != nil {
		out[keys.TopicPath] = *c.topic
	}
	for k, v := range c.custom {
		if v == nil {
			continue
		}
		out[keys.RootPrefix+"/"+k] = fmt.Sprint(v)
	}
	return out
}

// Merge copies src's topic and custom entries into c, overwriting existing
// values. Used to install a decoded context into the current unit's store.
func (c *Context) Merge(src *Context) *Context {
	if src == nil {
		return c
	}
	if topic, ok := src.Topic(); ok {
		c.SetTopic(topic)
	}
	for k, v := range src.Custom() {
		c.SetCustom(k, v)
	}
	return c
}

// Clear resets the topic and custom entries. Called when the owning unit
// completes so nothing is carried into the next unit on the same worker.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = nil
	c.custom = nil
}

// sortedKeys gives the codec a stable encoding order.
func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
