package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(1)
	b := h.Subscribe(1)
	other := h.Subscribe(2)
	assert.Equal(t, 2, h.Count(1))

	t.Run("Notify wakes only the startup's subscribers", func(t *testing.T) {
		h.Notify(1)
		assert.Len(t, a.C, 1)
		assert.Len(t, b.C, 1)
		assert.Len(t, other.C, 0)
	})

	t.Run("Bursts collapse", func(t *testing.T) {
		h.Notify(1)
		h.Notify(1)
		assert.Len(t, a.C, 1)
		<-a.C
		<-b.C
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		h.Unsubscribe(a)
		h.Unsubscribe(b)
		assert.Equal(t, 0, h.Count(1))
		h.Notify(1)
		assert.Len(t, a.C, 0)
		h.Unsubscribe(a)
	})
}
