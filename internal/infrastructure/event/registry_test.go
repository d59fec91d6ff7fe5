package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("type handlers come before wildcard handlers", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := newTestHandler()
		specific := newTestHandler()
		r.Register(wildcard)
		r.Register(specific, "SalesOrderCancelled")

		hs := r.Handlers("SalesOrderCancelled")
		if assert.Len(t, hs, 2) {
			assert.Same(t, specific, hs[0])
			assert.Same(t, wildcard, hs[1])
		}
		assert.Len(t, r.Handlers("Unknown"), 1)
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		other := newTestHandler()
		r.Register(h, "A", "B")
		r.Register(other, "B")
		r.Register(h)

		r.Unregister(h)

		assert.Empty(t, r.Handlers("A"))
		assert.Len(t, r.Handlers("B"), 1)
		assert.ElementsMatch(t, []string{"B"}, r.EventTypes())
	})
}
