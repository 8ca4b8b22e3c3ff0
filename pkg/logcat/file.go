package logcat

import (
	"fmt"
	"io"
	"sync"

	"github.com/hpcloud/tail"

	"github.com/devicelab-dev/uiauto/pkg/core"
)

// FileSource follows a log file, e.g. one written by `adb logcat -f` or a
// host-side capture. Only lines appended after Open are delivered.
type FileSource struct {
	Path string
	// Poll uses stat polling instead of inotify.
	Poll bool
}

// Open starts following the file. A missing file is waited for.
func (s *FileSource) Open() (core.LogStream, error) {
	t, err := tail.TailFile(s.Path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      s.Poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("tail %s: %w", s.Path, err)
	}

	st := &fileStream{
		tail: t,
		done: make(chan struct{}),
	}
	st.wg.Add(1)
	go st.forward()
	return st, nil
}

type fileStream struct {
	tail  *tail.Tail
	queue core.LineQueue
	done  chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// forward queues tail lines until the tail ends or the stream is closed.
func (st *fileStream) forward() {
	defer st.wg.Done()
	defer st.queue.End()

	for {
		select {
		case <-st.done:
			return
		case line, ok := <-st.tail.Lines:
			if !ok {
				return
			}
			st.queue.Push(core.LogLine{Text: line.Text, Err: line.Err})
		}
	}
}

func (st *fileStream) Pending() ([]core.LogLine, bool) {
	return st.queue.Take()
}

func (st *fileStream) Close() error {
	st.closeOnce.Do(func() {
		close(st.done)
		st.closeErr = st.tail.Stop()
		st.wg.Wait()
		st.tail.Cleanup()
	})
	return st.closeErr
}
