package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/liamcoop/bpmnconstraints/compiler"
)

// ConstraintCache holds compiled constraint lists keyed by diagram digest
// and compile flags. Implementations must be safe for concurrent use.
type ConstraintCache interface {
	// Get returns the cached constraints for key, if any
	Get(key string) ([]compiler.CompiledConstraint, bool)

	// Add stores constraints under key
	Add(key string, cs []compiler.CompiledConstraint)

	// Purge drops every entry
	Purge()

	// Len is the number of cached entries
	Len() int
}

// LRUCache is a size-bounded ConstraintCache evicting the least recently
// used diagram.
type LRUCache struct {
	lru *lru.Cache[string, []compiler.CompiledConstraint]
}

// NewLRUCache creates a cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[string, []compiler.CompiledConstraint](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Get(key string) ([]compiler.CompiledConstraint, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Add(key string, cs []compiler.CompiledConstraint) {
	c.lru.Add(key, cs)
}

func (c *LRUCache) Purge() { c.lru.Purge() }

func (c *LRUCache) Len() int { return c.lru.Len() }
