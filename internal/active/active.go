package active

import (
	"container/heap"
	"sort"
	"sync"
	"time"
)

// DefaultReleaseDelay is how long a pressed key stays highlighted.
const DefaultReleaseDelay = 150 * time.Millisecond

type release struct {
	at  time.Time
	id  string
	seq uint64
}

// releaseQueue is a min-heap of scheduled releases ordered by time, then by
// scheduling order.
type releaseQueue []release

func (q releaseQueue) Len() int { return len(q) }
func (q releaseQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}
func (q releaseQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *releaseQueue) Push(x interface{}) { *q = append(*q, x.(release)) }
func (q *releaseQueue) Pop() interface{} {
	old := *q
	n := len(old)
	r := old[n-1]
	*q = old[:n-1]
	return r
}

// Set tracks pressed note identifiers. Each Press schedules its own release;
// the first release to fire for an id removes it, even if later presses of
// the same id are still pending.
type Set struct {
	mu      sync.Mutex
	delay   time.Duration
	now     func() time.Time
	members map[string]struct{}
	queue   releaseQueue
	seq     uint64
}

// New returns a Set releasing keys after delay. A nil now uses time.Now.
func New(delay time.Duration, now func() time.Time) *Set {
	if delay <= 0 {
		delay = DefaultReleaseDelay
	}
	if now == nil {
		now = time.Now
	}
	return &Set{
		delay:   delay,
		now:     now,
		members: make(map[string]struct{}),
	}
}

func (s *Set) Delay() time.Duration { return s.delay }

// Press marks id active and schedules its release.
func (s *Set) Press(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.advanceLocked(now)
	s.members[id] = struct{}{}
	s.seq++
	heap.Push(&s.queue, release{at: now.Add(s.delay), id: id, seq: s.seq})
}

// Active reports whether id is currently pressed. Due releases fire first.
func (s *Set) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(s.now())
	_, ok := s.members[id]
	return ok
}

// Advance fires all due releases and returns the ids that left the set, in
// firing order.
func (s *Set) Advance() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(s.now())
}

func (s *Set) advanceLocked(now time.Time) []string {
	var released []string
	for s.queue.Len() > 0 && !now.Before(s.queue[0].at) {
		r := heap.Pop(&s.queue).(release)
		if _, ok := s.members[r.id]; !ok {
			continue
		}
		delete(s.members, r.id)
		released = append(released, r.id)
	}
	return released
}

// Snapshot returns the sorted active ids.
func (s *Set) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(s.now())
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(s.now())
	return len(s.members)
}

// Pending returns the number of scheduled releases that have not fired yet.
func (s *Set) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}
