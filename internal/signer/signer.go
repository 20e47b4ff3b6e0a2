package signer

// amender is the slice of the git CLI the signer needs: rewrite HEAD
// with a signature and check the result.
type amender interface {
	AmendSigned(message, key string) (string, error)
	VerifyCommit(ref string) (string, error)
}

// GPG signs the checked out commit in place through git, using the
// configured signing key. The signature is verified right after signing
// so a bad key setup surfaces immediately.
type GPG struct {
	cli amender
	key string
}

func New(cli amender, key string) *GPG {
	return &GPG{cli: cli, key: key}
}

func (g *GPG) Sign(message string) (string, error) {
	return g.cli.AmendSigned(message, g.key)
}

func (g *GPG) Verify() (string, error) {
	return g.cli.VerifyCommit("HEAD")
}
