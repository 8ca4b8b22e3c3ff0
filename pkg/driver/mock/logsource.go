package mock

import (
	"sync"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
)

// ScriptedLine is emitted After the stream opens.
type ScriptedLine struct {
	After time.Duration
	Text  string
}

// LogSource replays a fixed script on every Open.
type LogSource struct {
	Script []ScriptedLine
	// OpenErr is returned by Open when set.
	OpenErr error
	// ReadErr is delivered after the script when set.
	ReadErr error

	mu      sync.Mutex
	opened  int
	closed  int
	cleared int
}

// Open starts a replay of the script.
func (s *LogSource) Open() (core.LogStream, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()

	st := &logStream{
		source: s,
		done:   make(chan struct{}),
	}
	st.wg.Add(1)
	go st.replay(s.Script, s.ReadErr)
	return st, nil
}

// Clear records a buffer clear.
func (s *LogSource) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

// Stats returns how many streams were opened and closed and how often the
// buffer was cleared.
func (s *LogSource) Stats() (opened, closed, cleared int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed, s.cleared
}

type logStream struct {
	source    *LogSource
	queue     core.LineQueue
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// replay queues each scripted line once its offset has passed. The stream
// stays open after the script until Close, like a live capture.
func (st *logStream) replay(script []ScriptedLine, readErr error) {
	defer st.wg.Done()

	start := time.Now()
	for _, l := range script {
		if wait := time.Until(start.Add(l.After)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-st.done:
				timer.Stop()
				return
			}
		}
		st.queue.Push(core.LogLine{Text: l.Text})
	}
	if readErr != nil {
		st.queue.Push(core.LogLine{Err: readErr})
		st.queue.End()
	}
}

func (st *logStream) Pending() ([]core.LogLine, bool) {
	return st.queue.Take()
}

func (st *logStream) Close() error {
	st.closeOnce.Do(func() {
		close(st.done)
		st.wg.Wait()
		st.source.mu.Lock()
		st.source.closed++
		st.source.mu.Unlock()
	})
	return nil
}
