package dedup

import (
	"fmt"
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and strips punctuation",
			input:    "New Guide: Building Your First PC!",
			expected: "new guide building your first pc",
		},
		{
			name:     "removes hashtags",
			input:    "Fresh tutorial out now #PC #Hardware #Tutorial",
			expected: "fresh tutorial out now",
		},
		{
			name:     "removes emoji",
			input:    "Server build walkthrough 🖥️ is live",
			expected: "server build walkthrough is live",
		},
		{
			name:     "collapses whitespace",
			input:    "too   many\n\nspaces   here",
			expected: "too many spaces here",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"New Guide: Building Your First PC! 🖥️ #PC #Hardware",
		"already normalized text",
		"",
		"MIXED Case With   Spacing",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)

		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical",
			a:        "new video about building servers",
			b:        "new video about building servers",
			expected: 1.0,
		},
		{
			name:     "no overlap",
			a:        "cooking pasta tonight",
			b:        "gaming stream highlights",
			expected: 0.0,
		},
		{
			name:     "half overlap relative to shorter",
			a:        "alpha beta",
			b:        "alpha gamma delta epsilon",
			expected: 0.5,
		},
		{
			name:     "empty side",
			a:        "",
			b:        "anything",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got != tt.expected {
				t.Errorf("Similarity() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCacheDuplicateThreshold(t *testing.T) {
	cache := NewCache(10, 0.80)
	cache.Record(Normalize("complete guide to building your first gaming pc"))

	// 7 of 8 words shared with the recorded message: above 80%.
	dup := Normalize("complete guide to building your first gaming rig")
	if !cache.IsDuplicate(dup) {
		t.Errorf("IsDuplicate() = false for %.2f overlap, want true", Similarity(dup, cache.entries[0]))
	}

	// 4 of 8 words shared: well below the threshold.
	fresh := Normalize("complete walkthrough for your new home server build")
	if cache.IsDuplicate(fresh) {
		t.Errorf("IsDuplicate() = true for dissimilar message, want false")
	}
}

func TestCacheFIFOEviction(t *testing.T) {
	cache := NewCache(3, 0.80)

	for i := 0; i < 5; i++ {
		cache.Record(fmt.Sprintf("unique message number %d with distinct words %d%d", i, i, i))
	}

	if cache.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cache.Len())
	}

	// The first two entries must have been evicted.
	if cache.IsDuplicate("unique message number 0 with distinct words 00") {
		t.Error("oldest entry still present after eviction")
	}

	if !cache.IsDuplicate("unique message number 4 with distinct words 44") {
		t.Error("newest entry missing from cache")
	}
}

func TestRecordIfFresh(t *testing.T) {
	cache := NewCache(10, 0.80)

	msg := Normalize("brand new announcement about docker tutorials")
	if !cache.RecordIfFresh(msg) {
		t.Fatal("RecordIfFresh() = false on empty cache")
	}

	if cache.RecordIfFresh(msg) {
		t.Error("RecordIfFresh() = true for exact repeat")
	}

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(50, 0.80)

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			msg := fmt.Sprintf("concurrent message %d with filler words %d%d", n, n, n)
			cache.RecordIfFresh(Normalize(msg))
			cache.IsDuplicate(Normalize(msg))
		}(i)
	}

	wg.Wait()

	if cache.Len() != 20 {
		t.Errorf("Len() = %d, want 20", cache.Len())
	}
}
