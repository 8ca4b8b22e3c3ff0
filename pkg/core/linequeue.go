package core

import "sync"

// LineQueue buffers captured log lines between the goroutine reading a
// capture and the poller consuming it. The zero value is ready to use.
type LineQueue struct {
	mu    sync.Mutex
	lines []LogLine
	ended bool
}

// Push appends a line. Lines pushed after End are dropped.
func (q *LineQueue) Push(l LogLine) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.ended {
		q.lines = append(q.lines, l)
	}
}

// End marks the capture finished.
func (q *LineQueue) End() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ended = true
}

// Take removes and returns every queued line. ended reports that the capture
// finished, so the queue stays empty from now on.
func (q *LineQueue) Take() (lines []LogLine, ended bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	lines, q.lines = q.lines, nil
	return lines, q.ended
}
