package bucketlist

import (
	"testing"

	models "bucketlist/internal/domain/models/bucketlist"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistry(t *testing.T) {
	f := newFixture(t)
	r := NewSessionRegistry(f.deps)

	first := r.Session(alice)
	assert.Same(t, first, r.Session(alice))
	assert.Same(t, first, r.Session(models.Actor{DisplayName: "Alice", Email: "alice@example.com"}))
	assert.NotSame(t, first, r.Session(bob))
	assert.Equal(t, 2, r.Len())

	renamed := r.Session(models.Actor{DisplayName: "Alice B.", Email: "alice@example.com"})
	assert.NotSame(t, first, renamed)
	assert.Equal(t, "Alice B.", renamed.Actor().DisplayName)
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Drop("ALICE@example.com"))
	assert.False(t, r.Drop("alice@example.com"))
	assert.Equal(t, 1, r.Len())
}

func TestSessionRegistry_AnonymousNotRegistered(t *testing.T) {
	r := NewSessionRegistry(newFixture(t).deps)

	a := r.Session(models.Actor{})
	b := r.Session(models.Actor{})
	assert.NotSame(t, a, b)
	assert.Zero(t, r.Len())
}
