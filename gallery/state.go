// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gallery

// State is what the gallery grid renders. Exactly one applies at a time.
type State int

const (
	Prompt State = iota
	Loading
	Error
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Prompt:
		return "prompt"
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return "unknown"
	}
}

// Status is the outcome of a gallery resolution so far.
type Status struct {
	HasQuery bool  // repository and folder were given
	Done     bool  // resolution finished, successfully or not
	Err      error // listing failure
	Entries  int   // entries after filtering
}

// Select picks the render state for st.
func Select(st Status) State {
	switch {
	case !st.HasQuery:
		return Prompt
	case !st.Done:
		return Loading
	case st.Err != nil:
		return Error
	case st.Entries == 0:
		return Empty
	default:
		return Populated
	}
}
