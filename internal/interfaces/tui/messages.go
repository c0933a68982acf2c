package tui

import "github.com/turtacn/druglike/internal/application/screening"

// viewLoadedMsg carries the result of re-screening one panel.  seq lets the
// model drop results that a later slider move has superseded.
type viewLoadedMsg struct {
	panel int
	seq   int
	view  *screening.View
	err   error
}
