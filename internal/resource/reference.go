package resource

import (
	"fmt"
	"strconv"
)

// Kind identifies what a Reference points at.
type Kind string

const (
	KindUnknown    Kind = ""
	KindVideo      Kind = "video"
	KindCollection Kind = "collection"
)

// Outcome is the resolution result of Parse.
type Outcome string

const (
	Found       Outcome = "found"
	NotFound    Outcome = "not_found"
	Unparseable Outcome = "unparseable"
)

// Reference is the canonical form of the sync command's resource argument.
// Section is set when the reference came from a configured section; it names
// the head entry the run reads and writes.
type Reference struct {
	Kind    Kind
	ID      int64
	Section string
	Outcome Outcome
	Input   string
}

// SectionTable resolves configured section names to collection ids.
type SectionTable interface {
	LookupSection(name string) (int64, bool)
}

// Resolved reports whether the reference can drive a run.
func (r Reference) Resolved() bool {
	return r.Outcome == Found
}

// IsCollection reports whether the reference names a favourites collection.
func (r Reference) IsCollection() bool {
	return r.Outcome == Found && r.Kind == KindCollection
}

// String renders the reference for logs and error messages.
func (r Reference) String() string {
	switch r.Outcome {
	case NotFound:
		return fmt.Sprintf("section %q (not found)", r.Input)
	case Unparseable:
		return fmt.Sprintf("%q (unparseable)", r.Input)
	}
	switch r.Kind {
	case KindVideo:
		return "av" + strconv.FormatInt(r.ID, 10)
	case KindCollection:
		if r.Section != "" {
			return fmt.Sprintf("fav %d [%s]", r.ID, r.Section)
		}
		return "fav " + strconv.FormatInt(r.ID, 10)
	default:
		return r.Input
	}
}
