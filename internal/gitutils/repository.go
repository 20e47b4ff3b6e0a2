package gitutils

import (
	"path"

	"ghmerge/internal/pkg/fs"
	"ghmerge/internal/treehash"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
)

var ErrCannotGetLocalRepository = errors.New("cannot get local repository")

// Repository is the read side of the local repository, backed by go-git.
// Mutating operations go through CLI instead.
type Repository struct {
	r    *git.Repository
	path string
}

var getWorkingDir = func(fs fs.Filesystem) (string, error) {
	return fs.Getwd()
}

var openRepo = func(p string) (*git.Repository, string, error) {
	return openRepoRecursively(p)
}

func openRepoRecursively(input string) (*git.Repository, string, error) {
	dir := input
	for dir != "/" && dir != "." {
		repo, err := git.PlainOpen(dir)
		if err == nil {
			return repo, dir, nil
		}

		dir = path.Dir(dir)
	}

	return nil, "", errors.Errorf("could not recursively open a repo at %s", input)
}

// Open locates the repository enclosing the working directory.
func Open() (*Repository, error) {
	wd, err := getWorkingDir(fs.OS{})
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	r, p, err := openRepo(wd)
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	return &Repository{r: r, path: p}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// ConfigValue reads a single option from the repository configuration,
// with local values taking precedence over global ones. Missing keys
// yield an empty string.
func (r *Repository) ConfigValue(section, key string) string {
	cfg, err := r.r.ConfigScoped(gitconfig.GlobalScope)
	if err != nil {
		return ""
	}

	return cfg.Raw.Section(section).Option(key)
}

func (r *Repository) ResolveRevision(rev string) (plumbing.Hash, error) {
	h, err := r.r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(err, "cannot resolve %s", rev)
	}

	return *h, nil
}

// TreeDigest computes the SHA512 tree digest of the given revision.
func (r *Repository) TreeDigest(rev string) (string, error) {
	h, err := r.ResolveRevision(rev)
	if err != nil {
		return "", err
	}

	return treehash.Digest(r.r, h)
}
