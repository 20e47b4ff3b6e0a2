package prompt

import "github.com/AlecAivazis/survey/v2"

// Confirmer asks the user a yes/no question. The merge flow depends on
// this instead of a terminal so tests can drive it with a scripted
// source.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// Inputer asks the user for a free-text answer.
type Inputer interface {
	Input(message string) (string, error)
}

// Terminal asks on the controlling terminal.
type Terminal struct{}

func (Terminal) Confirm(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message}, &ok)
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (Terminal) Input(message string) (string, error) {
	answer := ""
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	if err != nil {
		return "", err
	}

	return answer, nil
}
