package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "SaleRecorded", "SaleVoided")
	registry.Register(handler, "SaleRecorded")

	assert.Len(t, registry.GetHandlers("SaleRecorded"), 1)
	assert.Len(t, registry.GetHandlers("SaleVoided"), 1)
	assert.Empty(t, registry.GetHandlers("Other"))
	assert.Equal(t, []string{"SaleRecorded", "SaleVoided"}, registry.EventTypes())
}

func TestHandlerRegistry_WildcardOrdering(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(wildcard)
	registry.Register(typed, "SaleRecorded")

	handlers := registry.GetHandlers("SaleRecorded")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	keep := newTestHandler()
	drop := newTestHandler()

	registry.Register(keep, "SaleRecorded")
	registry.Register(drop, "SaleRecorded", "SaleVoided")
	registry.Register(drop)

	registry.Unregister(drop)

	handlers := registry.GetHandlers("SaleRecorded")
	assert.Len(t, handlers, 1)
	assert.Same(t, keep, handlers[0])
	assert.Empty(t, registry.GetHandlers("SaleVoided"))
	assert.Equal(t, []string{"SaleRecorded"}, registry.EventTypes())
}
