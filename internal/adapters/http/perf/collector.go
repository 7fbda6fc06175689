package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest  EntryKind = iota // inbound request to this app
	KindQuery                     // session store SQL
	KindUpstream                  // call to the activities API
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /actividades", "select session", "POST /inscripciones"
	StatusCode int    // HTTP status; 0 for queries and transport failures
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, oldest entries are overwritten. Aggregation happens only on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	counts  [3]int64 // per kind, ever written; atomic
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: none; size <= 0 selects DefaultRingSize
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer. Safe on a nil Collector.
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	if int(e.Kind) < len(c.counts) {
		atomic.AddInt64(&c.counts[e.Kind], 1)
	}
}

// TotalRecorded returns the number of entries of kind ever recorded.
// POST: returns count >= 0
func (c *Collector) TotalRecorded(kind EntryKind) int64 {
	if int(kind) >= len(c.counts) {
		return 0
	}
	return atomic.LoadInt64(&c.counts[kind])
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRequests    int64
	TotalUpstream    int64
	RequestP50Ms     float64
	RequestP95Ms     float64
	RequestP99Ms     float64
	UpstreamP95Ms    float64
	UpstreamFailures int // transport errors and 5xx in the window
	SlowestPaths     []PathStat
	SlowestQueries   []PathStat
	SlowestUpstream  []PathStat
}

// PathStat aggregates timing for a single path or store method.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

type window struct {
	durations []float64
	stats     map[string]*PathStat
}

func (w *window) add(e Entry) {
	w.durations = append(w.durations, e.DurationMs)
	s, ok := w.stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		w.stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// Snapshot computes aggregated stats over entries newer than since.
// Sorts on every call; meant for the admin endpoint only.
// POST: Returns a Snapshot with percentiles and top-N lists per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	windows := map[EntryKind]*window{
		KindRequest:  {stats: map[string]*PathStat{}},
		KindQuery:    {stats: map[string]*PathStat{}},
		KindUpstream: {stats: map[string]*PathStat{}},
	}
	failures := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		w, ok := windows[e.Kind]
		if !ok {
			continue
		}
		w.add(e)
		if e.Kind == KindUpstream && (e.StatusCode == 0 || e.StatusCode >= 500) {
			failures++
		}
	}

	for _, w := range windows {
		for _, s := range w.stats {
			s.AvgMs = s.TotalMs / float64(s.Count)
		}
		sort.Float64s(w.durations)
	}

	req := windows[KindRequest]
	up := windows[KindUpstream]
	return Snapshot{
		TotalRequests:    c.TotalRecorded(KindRequest),
		TotalUpstream:    c.TotalRecorded(KindUpstream),
		RequestP50Ms:     percentile(req.durations, 50),
		RequestP95Ms:     percentile(req.durations, 95),
		RequestP99Ms:     percentile(req.durations, 99),
		UpstreamP95Ms:    percentile(up.durations, 95),
		UpstreamFailures: failures,
		SlowestPaths:     topByAvg(req.stats, topN),
		SlowestQueries:   topByAvg(windows[KindQuery].stats, topN),
		SlowestUpstream:  topByAvg(up.stats, topN),
	}
}

// percentile returns the p-th percentile from a sorted slice, 0 when empty.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N paths sorted by average duration, descending.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
