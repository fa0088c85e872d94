// Package flow holds per-routine variable slots and the flow states that the
// analysis propagates between blocks.
package flow

import (
	"phpc/internal/types"
)

// Context maps the variables of one routine to dense slots and owns the
// routine's TypeRefContext. It is not safe for concurrent use.
type Context struct {
	TypeCtx *types.TypeRefContext
	names   []string
	slots   map[string]int
}

// NewContext creates an empty context over tc (a fresh one when nil).
func NewContext(tc *types.TypeRefContext) *Context {
	if tc == nil {
		tc = types.NewTypeRefContext()
	}
	return &Context{TypeCtx: tc, slots: make(map[string]int)}
}

// Slot returns the slot of name, allocating one on first use. PHP variable
// names are case-sensitive.
func (c *Context) Slot(name string) int {
	if s, ok := c.slots[name]; ok {
		return s
	}
	s := len(c.names)
	c.names = append(c.names, name)
	c.slots[name] = s
	return s
}

// Lookup returns the slot of name without allocating.
func (c *Context) Lookup(name string) (int, bool) {
	s, ok := c.slots[name]
	return s, ok
}

// Name returns the variable name of slot.
func (c *Context) Name(slot int) string {
	if slot < 0 || slot >= len(c.names) {
		return ""
	}
	return c.names[slot]
}

// Len returns the number of allocated slots.
func (c *Context) Len() int { return len(c.names) }

// Names returns the variable names in slot order.
func (c *Context) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
