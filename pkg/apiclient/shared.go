package apiclient

import "sync/atomic"

var shared atomic.Pointer[Client]

// Initialize builds the process-wide client and stores it for Instance.
// Calling it again replaces the previous client; requests already running on
// the old one are left alone.
//
// Prefer passing the *Client explicitly; the shared instance exists for
// call sites where that is impractical.
func Initialize(cfg Config) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	shared.Store(c)
	return c, nil
}

// Instance returns the client stored by Initialize, or ErrNotInitialized.
func Instance() (*Client, error) {
	if c := shared.Load(); c != nil {
		return c, nil
	}
	return nil, ErrNotInitialized
}
