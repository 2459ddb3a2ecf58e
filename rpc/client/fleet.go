package client

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/robokit/simlink/rpc/common"
)

// Fleet manages named clients for several simulator instances at once, for
// example one per robot cell. Clients are created lazily and shared; lookups
// are safe for concurrent use.
type Fleet struct {
	clients *xsync.MapOf[string, *Client]
}

// NewFleet creates an empty fleet.
func NewFleet() *Fleet {
	return &Fleet{clients: xsync.NewMapOf[string, *Client]()}
}

// Add registers a client for name, replacing and closing any previous one.
func (f *Fleet) Add(name string, cfg common.ClientConfig) *Client {
	c := New(cfg)
	if prev, ok := f.clients.LoadAndStore(name, c); ok {
		prev.Close()
	}
	return c
}

// Get returns the client registered under name.
func (f *Fleet) Get(name string) (*Client, error) {
	c, ok := f.clients.Load(name)
	if !ok {
		return nil, fmt.Errorf("no client named %q", name)
	}
	return c, nil
}

// Remove closes and forgets the client registered under name.
func (f *Fleet) Remove(name string) {
	if c, ok := f.clients.LoadAndDelete(name); ok {
		c.Close()
	}
}

// Each calls fn for every registered client.
func (f *Fleet) Each(fn func(name string, c *Client)) {
	f.clients.Range(func(name string, c *Client) bool {
		fn(name, c)
		return true
	})
}

// Len returns the number of registered clients.
func (f *Fleet) Len() int { return f.clients.Size() }

// Close closes every client and empties the fleet.
func (f *Fleet) Close() {
	f.clients.Range(func(name string, c *Client) bool {
		c.Close()
		f.clients.Delete(name)
		return true
	})
}
