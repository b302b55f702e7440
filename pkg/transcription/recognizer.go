// Package transcription bridges a speech-recognition capability to
// accumulated transcript values, preserving elapsed time across pause/resume
// and surviving engines that terminate a session on their own.
package transcription

import "github.com/lingomeet/lingomeet/pkg/meeting"

// Result is one speech-recognition event. Interim results carry text that is
// still subject to revision; a final result will follow for the same speech.
// EngineTimestamp is milliseconds relative to the engine's own session start;
// the session manager rewrites it into recording-relative time.
type Result struct {
	Text            string
	IsFinal         bool
	EngineTimestamp int64
}

// Handler receives recognition events. A Recognizer has at most one
// subscriber at a time.
type Handler interface {
	// OnResult delivers an interim or final recognition result.
	OnResult(res Result)

	// OnError reports an engine failure. The session may still continue.
	OnError(err error)

	// OnEnd signals that the engine terminated the active segment, whether
	// because Stop was called or because it gave up on its own.
	OnEnd()
}

// Recognizer is the speech-recognition capability consumed by the Manager.
// Implementations are swappable adapters; the manager never inspects them
// beyond this contract.
type Recognizer interface {
	// Supported reports whether the capability is available in this
	// environment.
	Supported() bool

	// Start begins a recognition segment in the given language.
	Start(lang meeting.Language) error

	// Stop terminates the active segment. Safe to call when idle.
	Stop()

	// Subscribe registers the single event subscriber. It fails with
	// ErrConflict when a subscriber is already registered.
	Subscribe(h Handler) error

	// Unsubscribe removes the current subscriber.
	Unsubscribe()
}
