package mocks

// Inputer replays a scripted sequence of free-text answers. Once the
// script is exhausted every further question gets an empty answer.
type Inputer struct {
	Answers []string
	Err     error
	Prompts []string
}

func (i *Inputer) Input(message string) (string, error) {
	i.Prompts = append(i.Prompts, message)
	if i.Err != nil {
		return "", i.Err
	}
	if len(i.Answers) == 0 {
		return "", nil
	}

	a := i.Answers[0]
	i.Answers = i.Answers[1:]
	return a, nil
}
