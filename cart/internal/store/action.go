package store

// Action is a cart command fed through Reduce. Every action is total:
// out-of-range values clamp and unknown keys no-op, so a transition can
// never fail.
type Action interface {
	isAction()
}

// AddLine merges the candidate into an existing line (quantity +1, clamped
// to the stock ceiling) or inserts a new line at quantity 1. It also
// surfaces the cart.
type AddLine struct {
	Candidate LineCandidate
}

// RemoveLine drops the line matching Key; absent keys no-op.
type RemoveLine struct {
	Key LineKey
}

// SetQuantity clamps Quantity into [0, MaxStock] for the matched line;
// a clamped result of zero removes the line entirely.
type SetQuantity struct {
	Key      LineKey
	Quantity int
}

// Clear empties the cart without touching visibility.
type Clear struct{}

type Open struct{}

type Close struct{}

type Toggle struct{}

func (AddLine) isAction()     {}
func (RemoveLine) isAction()  {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}
func (Open) isAction()        {}
func (Close) isAction()       {}
func (Toggle) isAction()      {}
