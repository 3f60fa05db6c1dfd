package services

import (
	"sync"
	"time"
)

// idSource hands out millisecond timestamps as ids, bumping by one when two
// are requested within the same millisecond.
type idSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func (s *idSource) next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
