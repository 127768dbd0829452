package convert

import "fmt"

// Warning records one skipped entry. The converters collect warnings instead
// of printing them so the caller decides whether a skip is fatal.
type Warning struct {
	Index  int    // position in the source sequence
	ID     string // entry id, if any
	Reason string
}

func (w Warning) String() string {
	if w.ID != "" {
		return fmt.Sprintf("entry %d (id %s) skipped: %s", w.Index, w.ID, w.Reason)
	}
	return fmt.Sprintf("entry %d skipped: %s", w.Index, w.Reason)
}
