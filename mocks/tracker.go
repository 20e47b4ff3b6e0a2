package mocks

import "ghmerge/internal/domain/pullrequest"

type Tracker struct {
	PR   *pullrequest.Entity
	Err  error
	Seen []int
}

func (t *Tracker) Fetch(id int) (*pullrequest.Entity, error) {
	t.Seen = append(t.Seen, id)
	if t.Err != nil {
		return nil, t.Err
	}

	return t.PR, nil
}
