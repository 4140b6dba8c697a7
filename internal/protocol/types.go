package protocol

import "fmt"

// Kind classifies what an ActionRequest asks the bridge to do.
type Kind string

const (
	KindApplication Kind = "application"
	KindFunction    Kind = "function"
	KindFile        Kind = "file"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindApplication, KindFunction, KindFile:
		return true
	}
	return false
}

// ActionRequest is the payload the UI layer sends when the user picks a
// quick-search result. It lives for a single dispatch.
type ActionRequest struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Path        string `json:"path,omitempty"`        // required for application and file
	ActionName  string `json:"action_name,omitempty"` // required for function
	Category    string `json:"category,omitempty"`
}

// Target returns the field that identifies what the request acts on.
func (r ActionRequest) Target() string {
	if r.Kind == KindFunction {
		return r.ActionName
	}
	return r.Path
}

// Status values used on the wire.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the normalized outcome every bridge operation reports.
type Result struct {
	OK      bool
	Message string
}

// Success builds a successful Result.
func Success(msg string) Result {
	return Result{OK: true, Message: msg}
}

// Failure builds a failed Result.
func Failure(msg string) Result {
	return Result{OK: false, Message: msg}
}

// Failuref builds a failed Result from a format string.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// Err returns nil on success, or the failure message as an error.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return resultError(r.Message)
}

func (r Result) String() string {
	if r.OK {
		return "ok: " + r.Message
	}
	return "error: " + r.Message
}

type resultError string

func (e resultError) Error() string { return string(e) }

// Envelope is the JSON shape of a Result on the wire.
type Envelope struct {
	Status  string `json:"status"` // ok | error
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Value   any    `json:"value,omitempty"`
	Info    any    `json:"info,omitempty"`
}
