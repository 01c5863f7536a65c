// Package observability aggregates relay runtime metrics for the health
// worker and the inspect dashboard.
package observability

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Stats is one snapshot of the relay process.
type Stats struct {
	Sessions         int     `json:"sessions"`
	Rooms            int     `json:"rooms"`
	MessagesRelayed  uint64  `json:"messages_relayed"`
	MessagesRejected uint64  `json:"messages_rejected"`
	EventsDropped    uint64  `json:"events_dropped"`
	ReadFlips        uint64  `json:"read_flips"`
	Goroutines       int     `json:"goroutines"`
	AllocMemMB       uint64  `json:"alloc_mem_mb"`
	NumGC            uint32  `json:"num_gc"`
	CPUPercent       float64 `json:"cpu_percent"`
}

// Manager collects counters from the relay and system metrics from the
// health worker. Counters are atomic; the snapshot is mutex-guarded.
type Manager struct {
	mu     sync.RWMutex
	latest Stats

	messagesRelayed  atomic.Uint64
	messagesRejected atomic.Uint64
	eventsDropped    atomic.Uint64
	readFlips        atomic.Uint64
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) MessageRelayed()  { m.messagesRelayed.Add(1) }
func (m *Manager) MessageRejected() { m.messagesRejected.Add(1) }
func (m *Manager) EventDropped()    { m.eventsDropped.Add(1) }
func (m *Manager) ReadFlip()        { m.readFlips.Add(1) }

// Update merges gauge values sampled by the health worker with the
// counter values owned here.
func (m *Manager) Update(sessions, rooms int, cpuPercent float64) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = Stats{
		Sessions:         sessions,
		Rooms:            rooms,
		MessagesRelayed:  m.messagesRelayed.Load(),
		MessagesRejected: m.messagesRejected.Load(),
		EventsDropped:    m.eventsDropped.Load(),
		ReadFlips:        m.readFlips.Load(),
		Goroutines:       runtime.NumGoroutine(),
		AllocMemMB:       mem.Alloc / 1024 / 1024,
		NumGC:            mem.NumGC,
		CPUPercent:       cpuPercent,
	}
}

func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// AsMap feeds the inspect dashboard's stats panel.
func (m *Manager) AsMap() map[string]any {
	s := m.Snapshot()
	return map[string]any{
		"sessions":          s.Sessions,
		"rooms":             s.Rooms,
		"messages_relayed":  s.MessagesRelayed,
		"messages_rejected": s.MessagesRejected,
		"events_dropped":    s.EventsDropped,
		"read_flips":        s.ReadFlips,
		"goroutines":        s.Goroutines,
		"alloc_mem_mb":      s.AllocMemMB,
		"num_gc":            s.NumGC,
		"cpu_percent":       s.CPUPercent,
	}
}
