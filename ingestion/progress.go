// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a single, rewritten progress line while documents
// are loaded into a collection.
type ProgressTracker struct {
	writer       io.Writer
	label        string
	total        int
	current      int
	lastReported int
	interval     int
	startTime    time.Time
	started      bool
	mu           sync.Mutex
}

// NewProgressTracker reports to writer every interval documents out of total.
func NewProgressTracker(writer io.Writer, label string, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		writer:   writer,
		label:    label,
		total:    total,
		interval: max(interval, 1),
	}
}

// Start resets the counter and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.lastReported = 0
}

// Add records n more loaded documents.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current = min(p.current+n, p.total)
	if p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final count followed by a newline. The count is left
// where it is so an interrupted load shows how far it got.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started && p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.current) / secs
	}
	fmt.Fprintf(p.writer, "\r%s: %d/%d (%.1f%%) - %.1f docs/s",
		p.label, p.current, p.total, percentage, rate)
}
