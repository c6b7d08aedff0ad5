package syncer

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeFailed
	outcomeAborted
)

// itemOutcome is the result of acquiring one item. part is the 1-based part
// that failed, zero for item-level assets.
type itemOutcome struct {
	kind outcomeKind
	part int
	err  error
}

func succeeded() itemOutcome {
	return itemOutcome{kind: outcomeOK}
}

func failedAt(part int, err error) itemOutcome {
	return itemOutcome{kind: outcomeFailed, part: part, err: err}
}

func aborted(err error) itemOutcome {
	return itemOutcome{kind: outcomeAborted, err: err}
}
