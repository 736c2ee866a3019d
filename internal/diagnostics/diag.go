package diagnostics

import "sync"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed by the control path.
const (
	CodeWriteIgnored     = "WRITE.IGNORED"
	CodeCommandDropped   = "COMMAND.DROPPED"
	CodeAnimationChanged = "ANIMATION.CHANGED"
	CodeAnimationUnknown = "ANIMATION.UNKNOWN"
	CodeSpeedRejected    = "SPEED.REJECTED"
	CodeSinkFailed       = "SINK.FAILED"
	CodeSinkRecovered    = "SINK.RECOVERED"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Reporter receives diagnostics. Implementations must not block.
type Reporter interface {
	Report(d Diagnostic)
}

type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops everything.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Recorder keeps every diagnostic it is given.
type Recorder struct {
	mu  sync.Mutex
	all []Diagnostic
}

func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	r.all = append(r.all, d)
	r.mu.Unlock()
}

func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.all...)
}

// Codes returns the code of each recorded diagnostic, in order.
func (r *Recorder) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.all))
	for i, d := range r.all {
		out[i] = d.Code
	}
	return out
}
