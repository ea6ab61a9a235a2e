package tui

import "github.com/PXLTCH/startup-ai/internal/interview"

// resultMsg carries the session view returned by a completed engine call.
type resultMsg struct {
	res *interview.Result
}

// errMsg carries a failed engine call. The model keeps its previous view.
type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }
