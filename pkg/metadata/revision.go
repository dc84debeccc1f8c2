package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// RevisionKind distinguishes the forms a RevisionSelector can take.
type RevisionKind uint8

const (
	// RevisionNumber addresses an exact revision.
	RevisionNumber RevisionKind = iota
	// RevisionDraft addresses the project's open draft.
	RevisionDraft
	// RevisionLatest addresses the most recently published revision.
	RevisionLatest
)

// RevisionSelector addresses one Version of a project. It is resolved into a
// concrete revision number against the project row before any version lookup.
//
// The zero value selects revision 0.
type RevisionSelector struct {
	kind   RevisionKind
	number int
}

// Draft selects the current draft.
func Draft() RevisionSelector { return RevisionSelector{kind: RevisionDraft} }

// Latest selects the latest published revision.
func Latest() RevisionSelector { return RevisionSelector{kind: RevisionLatest} }

// Revision selects an exact revision number.
func Revision(n int) RevisionSelector { return RevisionSelector{kind: RevisionNumber, number: n} }

// ParseRevisionSelector parses "draft", "latest", "N" or "revN".
func ParseRevisionSelector(s string) (RevisionSelector, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "draft":
		return Draft(), nil
	case "latest":
		return Latest(), nil
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(v, "rev"))
		if err != nil || n < 0 {
			return RevisionSelector{}, fmt.Errorf("%w: revision selector %q", ErrInvalidInput, s)
		}
		return Revision(n), nil
	}
}

// Kind returns the selector form.
func (r RevisionSelector) Kind() RevisionKind { return r.kind }

// Number returns the exact revision for numeric selectors.
func (r RevisionSelector) Number() (int, bool) {
	return r.number, r.kind == RevisionNumber
}

// Resolve maps the selector onto a concrete revision using the project's
// revision pointers. It reports false when the pointer the selector needs is unset.
func (r RevisionSelector) Resolve(latestRevision, draftRevision *int) (int, bool) {
	switch r.kind {
	case RevisionDraft:
		if draftRevision == nil {
			return 0, false
		}
		return *draftRevision, true
	case RevisionLatest:
		if latestRevision == nil {
			return 0, false
		}
		return *latestRevision, true
	default:
		return r.number, true
	}
}

func (r RevisionSelector) String() string {
	switch r.kind {
	case RevisionDraft:
		return "draft"
	case RevisionLatest:
		return "latest"
	default:
		return strconv.Itoa(r.number)
	}
}
