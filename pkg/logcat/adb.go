// Package logcat provides core.LogSource implementations: a live `adb logcat`
// process and a followed log file.
package logcat

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// maxLineSize bounds a single log line.
const maxLineSize = 1024 * 1024

// Device is the part of device.AndroidDevice the adb source needs.
type Device interface {
	LogcatCommand(args ...string) *exec.Cmd
	ClearLogcat() error
}

// ADBSource captures the device log by running `adb logcat`. Each Open starts
// a new process which first dumps the device buffer and then follows it, so
// callers that only want new lines clear the buffer first.
type ADBSource struct {
	dev  Device
	args []string
}

// NewADBSource creates a source for dev. Extra args are passed to logcat.
func NewADBSource(dev Device, args ...string) *ADBSource {
	return &ADBSource{dev: dev, args: args}
}

// Open starts `adb logcat` and returns its output as a stream.
func (s *ADBSource) Open() (core.LogStream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("logcat pipe: %w", err)
	}

	cmd := s.dev.LogcatCommand(s.args...)
	cmd.Stdout = pw
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("start logcat: %w", err)
	}
	// The child holds its own copy of the write end.
	pw.Close()

	st := &processStream{
		cmd:  cmd,
		pipe: pr,
		done: make(chan struct{}),
	}
	st.wg.Add(1)
	go st.read()
	logger.Debug("logcat started: %v", cmd.Args)
	return st, nil
}

// Clear empties the device log buffer.
func (s *ADBSource) Clear() error {
	return s.dev.ClearLogcat()
}

// processStream owns one logcat process and the goroutine reading it. The
// reader queues lines as fast as logcat writes them, so a poller sees the
// whole initial buffer dump on its first Pending call.
type processStream struct {
	cmd   *exec.Cmd
	pipe  *os.File
	queue core.LineQueue
	done  chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (st *processStream) read() {
	defer st.wg.Done()
	defer st.queue.End()

	sc := bufio.NewScanner(st.pipe)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		st.queue.Push(core.LogLine{Text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		select {
		case <-st.done:
			// Close shut the pipe.
		default:
			st.queue.Push(core.LogLine{Err: err})
		}
	}
}

func (st *processStream) Pending() ([]core.LogLine, bool) {
	return st.queue.Take()
}

// Close kills the process and waits for the reader to exit.
func (st *processStream) Close() error {
	st.closeOnce.Do(func() {
		close(st.done)
		if st.cmd.Process != nil {
			st.cmd.Process.Kill()
		}
		// Unblocks the reader even if a grandchild still holds the write end.
		st.pipe.Close()
		st.wg.Wait()
		// A killed process always reports an exit error.
		st.cmd.Wait()
		logger.Debug("logcat stopped")
	})
	return nil
}
