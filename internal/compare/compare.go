package compare

// CharState classifies one character of the target text against the
// player's input buffer.
type CharState int

const (
	Untyped CharState = iota
	CursorPending
	Correct
	Incorrect
)

func (s CharState) String() string {
	switch s {
	case CursorPending:
		return "cursor"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "untyped"
	}
}

// Classify returns one CharState per character of target. Characters before
// the cursor are Correct or Incorrect by exact equality, the character at the
// cursor is CursorPending, everything after is Untyped. Pure function: same
// inputs always produce the same slice.
func Classify(target, typed string) []CharState {
	tr := []rune(target)
	ty := []rune(typed)

	states := make([]CharState, len(tr))
	for i := range tr {
		switch {
		case i < len(ty):
			if ty[i] == tr[i] {
				states[i] = Correct
			} else {
				states[i] = Incorrect
			}
		case i == len(ty):
			states[i] = CursorPending
		default:
			states[i] = Untyped
		}
	}
	return states
}

// ClampInput freezes the buffer at the target length: once every target
// character has been typed there is nothing left to classify, so extra input
// is dropped rather than given an undefined state.
func ClampInput(target, typed string) string {
	tr := []rune(target)
	ty := []rune(typed)
	if len(ty) <= len(tr) {
		return typed
	}
	return string(ty[:len(tr)])
}
