package scanner

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// LineDevice is a keyboard-wedge reader: every newline-terminated line of r is one code.
// Lines are read on demand by a single background goroutine started by the first Open.
// A line that arrives after its reader gave up is dropped, never handed to a later session.
type LineDevice struct {
	r     io.Reader
	reqs  chan chan lineResult
	start sync.Once

	mu   sync.Mutex
	open bool
}

type lineResult struct {
	line string
	err  error
}

func NewLineDevice(r io.Reader) *LineDevice {
	return &LineDevice{r: r, reqs: make(chan chan lineResult)}
}

func (d *LineDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil, ErrBusy
	}
	d.open = true
	d.start.Do(func() { go d.pump() })
	return &lineStream{dev: d, closed: make(chan struct{})}, nil
}

// pump answers one read request at a time. Replies are buffered, so a request whose
// caller left keeps its line and the line is lost with it.
func (d *LineDevice) pump() {
	sc := bufio.NewScanner(d.r)
	var readErr error
	for reply := range d.reqs {
		if readErr == nil && !sc.Scan() {
			readErr = sc.Err()
			if readErr == nil {
				readErr = io.EOF
			}
		}
		if readErr != nil {
			reply <- lineResult{err: readErr}
			continue
		}
		reply <- lineResult{line: sc.Text()}
	}
}

func (d *LineDevice) release() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

type lineStream struct {
	dev    *LineDevice
	once   sync.Once
	closed chan struct{}
}

func (s *lineStream) Next(ctx context.Context) (string, error) {
	reply := make(chan lineResult, 1)
	select {
	case <-s.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case s.dev.reqs <- reply:
	}

	select {
	case <-s.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-reply:
		return r.line, r.err
	}
}

func (s *lineStream) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.dev.release()
	})
	return nil
}
