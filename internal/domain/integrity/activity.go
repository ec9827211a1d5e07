package integrity

import (
	"sync"
	"time"
)

// activityLog tracks review timestamps per author with a bounded author
// count. When full, the author least recently active is evicted, so a
// pathological event cannot grow the log without bound.
type activityLog struct {
	mu         sync.Mutex
	byAuthor   map[string][]time.Time
	lastActive map[string]time.Time
	maxAuthors int
}

// newActivityLog creates an activity log bounded to maxAuthors authors.
// Zero or negative means unbounded.
func newActivityLog(maxAuthors int) *activityLog {
	return &activityLog{
		byAuthor:   make(map[string][]time.Time),
		lastActive: make(map[string]time.Time),
		maxAuthors: maxAuthors,
	}
}

// record notes one review by authorID at the given time.
func (l *activityLog) record(authorID string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, known := l.byAuthor[authorID]; !known && l.maxAuthors > 0 && len(l.byAuthor) >= l.maxAuthors {
		l.evictOldest()
	}

	l.byAuthor[authorID] = append(l.byAuthor[authorID], at)
	if at.After(l.lastActive[authorID]) {
		l.lastActive[authorID] = at
	}
}

// countWithin returns how many recorded reviews by authorID fall inside
// (at-window, at], including one recorded exactly at `at`.
func (l *activityLog) countWithin(authorID string, window time.Duration, at time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := at.Add(-window)
	count := 0
	for _, ts := range l.byAuthor[authorID] {
		if ts.After(cutoff) && !ts.After(at) {
			count++
		}
	}
	return count
}

// evictOldest removes the least recently active author.
// Must be called with l.mu held.
func (l *activityLog) evictOldest() {
	var (
		oldestID string
		oldestAt time.Time
		first    = true
	)
	for id, at := range l.lastActive {
		if first || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
			first = false
		}
	}
	if oldestID != "" {
		delete(l.byAuthor, oldestID)
		delete(l.lastActive, oldestID)
	}
}

// size returns the number of tracked authors.
func (l *activityLog) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byAuthor)
}
