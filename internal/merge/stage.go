package merge

// Stage identifies a step of the merge flow. Stages run strictly in
// order within one invocation.
type Stage int

const (
	StageFetch Stage = iota
	StageConstruct
	StageVerifyTree
	StageReview
	StageSign
	StagePublish
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageConstruct:
		return "construct"
	case StageVerifyTree:
		return "verify-tree"
	case StageReview:
		return "review"
	case StageSign:
		return "sign"
	case StagePublish:
		return "publish"
	case StageDone:
		return "done"
	}

	return "unknown"
}
