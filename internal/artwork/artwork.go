// Package artwork tracks the most recently received album/station art
// image.
package artwork

import (
	"image"
	"sync"
)

// Manager holds the latest artwork image. Art is only ever replaced by
// newer receptions, never cleared.
type Manager struct {
	mu       sync.Mutex
	image    image.Image
	filename string
	version  uint64
}

// NewManager creates an empty artwork manager.
func NewManager() *Manager {
	return &Manager{}
}

// Update replaces the current artwork.
func (m *Manager) Update(filename string, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.image = img
	m.filename = filename
	m.version++
}

// Current returns the latest artwork and its source filename. ok is
// false until the first artwork arrives.
func (m *Manager) Current() (img image.Image, filename string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image, m.filename, m.image != nil
}

// Version increments on every update; the display layer uses it to
// decide when to refetch.
func (m *Manager) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
