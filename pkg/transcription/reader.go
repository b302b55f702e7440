package transcription

import (
	"bufio"
	"io"
	"sync"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// ReaderRecognizer adapts a line-oriented text source (stdin, a piped file)
// to the Recognizer contract: every non-empty line becomes one final result.
// When the source runs dry it signals end-of-segment; a further Start fails,
// which is how the manager learns the input is exhausted rather than merely
// interrupted.
type ReaderRecognizer struct {
	mu        sync.Mutex
	scanner   *bufio.Scanner
	handler   Handler
	active    bool
	exhausted bool
	stop      chan struct{}
}

// NewReaderRecognizer wraps r. The recognizer reads lazily: nothing is
// consumed until Start.
func NewReaderRecognizer(r io.Reader) *ReaderRecognizer {
	return &ReaderRecognizer{scanner: bufio.NewScanner(r)}
}

// Supported always reports true: text input needs no speech capability.
func (r *ReaderRecognizer) Supported() bool { return true }

func (r *ReaderRecognizer) Start(_ meeting.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exhausted {
		return lmerrors.Transient("reader recognizer", io.EOF)
	}
	if r.active {
		return lmerrors.ErrConflict
	}
	r.active = true
	r.stop = make(chan struct{})
	go r.run(r.stop)
	return nil
}

func (r *ReaderRecognizer) run(stop chan struct{}) {
	for r.scanner.Scan() {
		select {
		case <-stop:
			return
		default:
		}
		line := r.scanner.Text()
		if line == "" {
			continue
		}
		r.mu.Lock()
		h := r.handler
		r.mu.Unlock()
		if h != nil {
			h.OnResult(Result{Text: line, IsFinal: true})
		}
	}

	r.mu.Lock()
	r.exhausted = true
	r.active = false
	h := r.handler
	if err := r.scanner.Err(); err != nil && h != nil {
		r.mu.Unlock()
		h.OnError(err)
		r.mu.Lock()
	}
	r.mu.Unlock()
	if h != nil {
		h.OnEnd()
	}
}

func (r *ReaderRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	close(r.stop)
}

func (r *ReaderRecognizer) Subscribe(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handler != nil && r.handler != h {
		return lmerrors.ErrConflict
	}
	r.handler = h
	return nil
}

func (r *ReaderRecognizer) Unsubscribe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = nil
}
