package mocks

type Signer struct {
	SignErr   error
	SignOut   string
	VerifyErr error
	VerifyOut string
	Signed    []string
}

func (s *Signer) Sign(message string) (string, error) {
	if s.SignErr != nil {
		return s.SignOut, s.SignErr
	}

	s.Signed = append(s.Signed, message)
	return s.SignOut, nil
}

func (s *Signer) Verify() (string, error) {
	return s.VerifyOut, s.VerifyErr
}
