// Package peer maintains the set of known peers a node gossips with.
package peer

import (
	"sync"
)

// Peer identifies a remote node by its gossip address.
type Peer struct {
	Host string
}

// New constructs a Peer for host.
func New(host string) Peer {
	return Peer{Host: host}
}

// Match reports whether host names this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Status summarizes a peer's view of the chain: its tip and the peers it
// knows. The gossip transport does not exchange it.
type Status struct {
	TipHash    string `json:"tip_hash"`
	TipHeight  uint64 `json:"tip_height"`
	KnownPeers []Peer `json:"known_peers"`
}

// =============================================================================

// Set is the concurrency-safe collection of peers a node currently
// knows about.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs an empty peer set.
func NewSet() *Set {
	return &Set{
		set: make(map[Peer]struct{}),
	}
}

// Add adds peer to the set, reporting whether it was new.
func (s *Set) Add(peer Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[peer]; exists {
		return false
	}
	s.set[peer] = struct{}{}
	return true
}

// Remove drops peer from the set.
func (s *Set) Remove(peer Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, peer)
}

// Copy returns every known peer other than self.
func (s *Set) Copy(self string) []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var peers []Peer
	for p := range s.set {
		if !p.Match(self) {
			peers = append(peers, p)
		}
	}

	return peers
}
