// Package dedup keeps a bounded rolling history of recently accepted
// notifications and answers whether a new candidate is too similar to any of
// them. Similarity is plain word-set overlap on normalized text; no
// embeddings, the messages are a sentence or two long.
package dedup

import (
	"regexp"
	"strings"
	"sync"
)

// DefaultCapacity is the number of recent messages kept when no explicit
// capacity is configured.
const DefaultCapacity = 20

// DefaultSimilarityThreshold is the word-overlap share above which a
// candidate counts as a duplicate. Tuned empirically against small local
// models; treat as a default, not an invariant.
const DefaultSimilarityThreshold = 0.80

var (
	hashtagPattern    = regexp.MustCompile(`#\w+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_ ]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical form of a message used for similarity
// comparison: hashtags removed, emoji and punctuation stripped, lowercased,
// whitespace collapsed. Normalize is idempotent.
func Normalize(message string) string {
	s := strings.ToLower(message)
	s = hashtagPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Similarity returns the share of words the two normalized messages have in
// common, relative to the shorter of the two. Returns 0 when either side has
// no words.
func Similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0

	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}

	shorter := len(wordsA)
	if len(wordsB) < shorter {
		shorter = len(wordsB)
	}

	return float64(shared) / float64(shorter)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}

	return set
}

// Cache is a bounded FIFO of normalized recent messages, safe for concurrent
// use. It is an injected dependency, never a package-level singleton, so
// tests get a fresh cache per case and concurrent generations share one
// explicitly.
type Cache struct {
	mu        sync.Mutex
	entries   []string
	capacity  int
	threshold float64
}

// NewCache creates a cache holding at most capacity normalized messages.
// Non-positive capacity falls back to DefaultCapacity; a threshold outside
// (0,1] falls back to DefaultSimilarityThreshold.
func NewCache(capacity int, threshold float64) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}

	return &Cache{
		entries:   make([]string, 0, capacity),
		capacity:  capacity,
		threshold: threshold,
	}
}

// IsDuplicate reports whether the normalized candidate exceeds the
// similarity threshold against any cached entry.
func (c *Cache) IsDuplicate(normalized string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isDuplicateLocked(normalized)
}

// RecordIfFresh atomically re-checks the candidate against the cache and
// records it when it is not a duplicate. The combined check-and-insert
// closes the race where two concurrent generations both pass the duplicate
// check against the same soon-to-be-stale state. Returns false when the
// candidate was rejected as a duplicate.
func (c *Cache) RecordIfFresh(normalized string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isDuplicateLocked(normalized) {
		return false
	}

	c.recordLocked(normalized)

	return true
}

// Record unconditionally appends the normalized message, evicting the oldest
// entry at capacity.
func (c *Cache) Record(normalized string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordLocked(normalized)
}

// Len returns the number of cached messages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) isDuplicateLocked(normalized string) bool {
	for _, cached := range c.entries {
		if cached == normalized {
			return true
		}

		if Similarity(normalized, cached) > c.threshold {
			return true
		}
	}

	return false
}

func (c *Cache) recordLocked(normalized string) {
	c.entries = append(c.entries, normalized)

	if len(c.entries) > c.capacity {
		c.entries = c.entries[1:]
	}
}
