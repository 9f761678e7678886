package models

// Verdict is the normalized outcome of checking one status source
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictSuccess
	VerdictFailure
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictFailure:
		return "failure"
	default:
		return "pending"
	}
}

// Signal is the normalized result of one status query. Receipt is set
// only on success; Reason only on an explicit gateway failure.
type Signal struct {
	Source  string
	Verdict Verdict
	Receipt string
	Reason  string
}
