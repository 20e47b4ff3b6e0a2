package pullrequest

// Fetcher is the narrow contract the merge flow has with the issue
// tracker: resolve a pull request id to its metadata.
type Fetcher interface {
	Fetch(id int) (*Entity, error)
}

type FetchService struct {
	fetcher Fetcher
}

func NewFetchService(f Fetcher) *FetchService {
	return &FetchService{f}
}

func (s *FetchService) Fetch(id int) (*Entity, error) {
	return s.fetcher.Fetch(id)
}
