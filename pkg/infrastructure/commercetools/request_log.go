package commercetools

import (
	"sync"
	"time"
)

// Modules under which storefront calls are recorded
const (
	ModuleAuth      = "auth"
	ModuleChannels  = "channels"
	ModuleProducts  = "products"
	ModuleInventory = "inventory"
)

// RequestEntry is one recorded call
type RequestEntry struct {
	Module    string    `json:"module"`
	Operation string    `json:"operation"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestSummary totals the calls of one fetch
type RequestSummary struct {
	Total    int            `json:"total"`
	ByModule map[string]int `json:"byModule"`
}

// RequestLog accumulates the HTTP calls made on behalf of a single fetch.
// Create one per fetch; it is safe for concurrent use.
type RequestLog struct {
	mu      sync.Mutex
	entries []RequestEntry
	total   int
}

// NewRequestLog creates an empty log
func NewRequestLog() *RequestLog {
	return &RequestLog{}
}

// Record adds count calls for module/operation and returns the running total
func (l *RequestLog) Record(module, operation string, count int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, RequestEntry{
		Module:    module,
		Operation: operation,
		Count:     count,
		Timestamp: time.Now(),
	})
	l.total += count
	return l.total
}

// Total returns the number of calls recorded so far
func (l *RequestLog) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Entries returns a copy of the recorded calls
func (l *RequestLog) Entries() []RequestEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RequestEntry(nil), l.entries...)
}

// Summary groups the recorded calls by module
func (l *RequestLog) Summary() RequestSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	byModule := make(map[string]int)
	for _, e := range l.entries {
		byModule[e.Module] += e.Count
	}
	return RequestSummary{Total: l.total, ByModule: byModule}
}
