package mocks

// Confirmer replays a scripted sequence of answers. Once the script is
// exhausted every further question is declined.
type Confirmer struct {
	Answers []bool
	Err     error
	Prompts []string
}

func (c *Confirmer) Confirm(message string) (bool, error) {
	c.Prompts = append(c.Prompts, message)
	if c.Err != nil {
		return false, c.Err
	}
	if len(c.Answers) == 0 {
		return false, nil
	}

	a := c.Answers[0]
	c.Answers = c.Answers[1:]
	return a, nil
}
