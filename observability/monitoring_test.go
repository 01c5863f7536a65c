package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_CountersAndSnapshot(t *testing.T) {
	req := require.New(t)
	m := NewManager()

	m.MessageRelayed()
	m.MessageRelayed()
	m.MessageRejected()
	m.EventDropped()
	m.ReadFlip()

	// Counters only land in the snapshot on Update.
	req.Zero(m.Snapshot().MessagesRelayed)

	m.Update(3, 2, 12.5)
	s := m.Snapshot()
	req.Equal(3, s.Sessions)
	req.Equal(2, s.Rooms)
	req.Equal(uint64(2), s.MessagesRelayed)
	req.Equal(uint64(1), s.MessagesRejected)
	req.Equal(uint64(1), s.EventsDropped)
	req.Equal(uint64(1), s.ReadFlips)
	req.Positive(s.Goroutines)
	req.Equal(12.5, s.CPUPercent)

	asMap := m.AsMap()
	req.Equal(3, asMap["sessions"])
	req.Equal(uint64(2), asMap["messages_relayed"])
}
