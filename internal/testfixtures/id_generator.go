package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// fixtureNamespace seeds the name-based UUIDs handed out by UUID mode.
var fixtureNamespace = uuid.MustParse("6f1c9a52-4b43-4c1e-9a8e-2d7f0b51c3aa")

// IDGenerator hands out reproducible identifiers. By default they read
// "<prefix>-<n>"; in UUID mode they are name-based UUIDs derived from the
// same sequence, matching the shape of production reservation ids.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      uint64
	uuids  bool
}

// NewIDGenerator yields "<prefix>-1", "<prefix>-2", ... ("id" when empty).
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// NewUUIDGenerator yields a fixed UUID sequence for the given seed.
func NewUUIDGenerator(seed string) *IDGenerator {
	g := NewIDGenerator(seed)
	g.uuids = true
	return g
}

// Next returns the following identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	id := fmt.Sprintf("%s-%d", g.prefix, g.n)
	if g.uuids {
		return uuid.NewSHA1(fixtureNamespace, []byte(id)).String()
	}
	return id
}

// NextFunc returns Next for injection; a nil generator yields empty ids.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset restarts the sequence so the next id is number one again.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.n = 0
	g.mu.Unlock()
}
