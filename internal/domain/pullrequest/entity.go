package pullrequest

type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// Entity holds the pull request metadata the merge flow needs. It is
// immutable once fetched from the tracker.
type Entity struct {
	ID          int
	Title       string
	Body        string
	State       State
	Author      string
	Source      string
	HeadSHA     string
	Destination string
	Mergeable   bool
	URL         string
}
