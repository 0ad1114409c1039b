package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerTick = 80 * time.Millisecond
	// Fetches slower than this show how long they have been running.
	spinnerShowElapsed = time.Second
)

// Spinner animates a message on w while a slow fetch runs.
type Spinner struct {
	w       io.Writer
	message string
	now     func() time.Time

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	started := s.now()
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprint(s.w, "\r\033[K"+s.frame(i, s.now().Sub(started)))
			}
		}
	}()
}

func (s *Spinner) frame(i int, elapsed time.Duration) string {
	line := "  " + StylePurple.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + Dim(s.message)
	if elapsed >= spinnerShowElapsed {
		line += " " + Dim(fmt.Sprintf("(%ds)", int(elapsed/time.Second)))
	}
	return line
}

// Stop ends the animation and clears the line. Later calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// StartSpinner starts a spinner and returns its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
