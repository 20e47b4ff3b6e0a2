package gitutils

// VersionControl combines go-git reads with git invocations for the
// operations go-git does not implement. It satisfies the merge flow's
// version control contract.
type VersionControl struct {
	*CLI
	repo *Repository
}

func NewVersionControl(repo *Repository) *VersionControl {
	return &VersionControl{
		CLI:  NewCLI(repo.Path()),
		repo: repo,
	}
}

func (v *VersionControl) TreeDigest(rev string) (string, error) {
	return v.repo.TreeDigest(rev)
}
