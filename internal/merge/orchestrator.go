package merge

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ghmerge/internal/config"
	"ghmerge/internal/domain/pullrequest"
	"ghmerge/internal/prompt"
	"ghmerge/internal/treehash"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// VersionControl is the slice of the local repository the merge flow
// drives. Implemented by gitutils.VersionControl, faked in tests.
type VersionControl interface {
	Fetch(url string, refspecs ...string) (string, error)
	RevParse(rev string) (string, error)
	SymbolicRef(ref string) (string, error)
	Checkout(ref string) (string, error)
	CheckoutBranch(name, at string) (string, error)
	DeleteBranch(name string) (string, error)
	DeleteRef(ref string) (string, error)
	MergeNoFF(commit, message string) (string, error)
	AbortMerge() (string, error)
	Amend(message string) (string, error)
	ShowMessage(rev string) (string, error)
	Diff(a, b string) (string, error)
	LogGraph(a, b string) (string, error)
	Push(url, refspec string) (string, error)
	TreeDigest(rev string) (string, error)
	RunShell(cmdline string) (string, error)
}

// Signer signs the checked out commit in place.
type Signer interface {
	Sign(message string) (string, error)
	Verify() (string, error)
}

// Candidate is the merge being constructed. It is created fresh per
// invocation and discarded when the user aborts.
type Candidate struct {
	PR       *pullrequest.Entity
	BaseTip  string
	Head     string
	Branch   string
	Commit   string
	Message  string
	TreeHash string

	headRef string
	baseRef string
	prev    string
}

type Options struct {
	VCS       VersionControl
	Tracker   pullrequest.Fetcher
	Signer    Signer
	Confirmer prompt.Confirmer
	Config    *config.Config
	Out       io.Writer
}

// Orchestrator walks a pull request through fetch, construct, tree
// verification, review, signing and publishing. It runs synchronously
// and never retries on its own; every external operation here has
// consequences the user must confirm or redo deliberately.
type Orchestrator struct {
	vcs     VersionControl
	tracker pullrequest.Fetcher
	signer  Signer
	confirm prompt.Confirmer
	cfg     *config.Config
	out     io.Writer
}

func New(o *Options) *Orchestrator {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}

	return &Orchestrator{
		vcs:     o.VCS,
		tracker: o.Tracker,
		signer:  o.Signer,
		confirm: o.Confirmer,
		cfg:     o.Config,
		out:     out,
	}
}

func (o *Orchestrator) Run(id int) error {
	p := newProgress(o.out)
	defer p.done()

	prev, err := o.currentRef()
	if err != nil {
		return errors.Wrap(err, "cannot determine the checked out branch")
	}

	c, err := o.fetch(id, p)
	if err != nil {
		return err
	}
	c.prev = prev

	if err := o.construct(c, p); err != nil {
		return err
	}

	if err := o.verifyTree(c, p); err != nil {
		o.rollback(c)
		return err
	}

	ok, err := o.review(c, p)
	if err != nil {
		o.rollback(c)
		return err
	}
	if !ok {
		o.rollback(c)
		return ErrAborted
	}

	signed, err := o.sign(c, p)
	if err != nil {
		// candidate branch retained so signing can be retried
		return err
	}
	if !signed {
		o.cleanupRefs(c)
		fmt.Fprintf(o.out, "Merge commit %s left unsigned on %s\n", shortSHA(c.Commit), c.Branch)
		return nil
	}

	return o.publish(c, p)
}

func (o *Orchestrator) gitURL() string {
	return fmt.Sprintf("https://github.com/%s.git", o.cfg.Remote.FullName())
}

func (o *Orchestrator) currentRef() (string, error) {
	ref, err := o.vcs.SymbolicRef("HEAD")
	if err == nil {
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}

	// detached HEAD, fall back to the commit id
	return o.vcs.RevParse("HEAD")
}

func (o *Orchestrator) fetch(id int, p *progress) (*Candidate, error) {
	p.stage(StageFetch, fmt.Sprintf("fetching pull request #%d from %s", id, o.cfg.Remote.FullName()))

	pr, err := o.tracker.Fetch(id)
	if err != nil {
		return nil, newFetchError(err, "")
	}
	if pr.State != pullrequest.StateOpen {
		return nil, newFetchError(errors.Errorf("pull request #%d is %s", id, pr.State), "")
	}
	if pr.Destination == "" {
		return nil, newFetchError(errors.Errorf("pull request #%d has no base branch", id), "")
	}

	c := &Candidate{
		PR:      pr,
		Branch:  fmt.Sprintf("ghmerge/%d", id),
		headRef: fmt.Sprintf("refs/ghmerge/%d/head", id),
		baseRef: fmt.Sprintf("refs/ghmerge/%d/base", id),
	}

	out, err := o.vcs.Fetch(o.gitURL(),
		fmt.Sprintf("+refs/pull/%d/head:%s", id, c.headRef),
		fmt.Sprintf("+refs/heads/%s:%s", pr.Destination, c.baseRef),
	)
	if err != nil {
		return nil, newFetchError(err, out)
	}

	// the fetch already wrote the scratch refs, so failing to resolve
	// them must not leave them behind
	head, err := o.vcs.RevParse(c.headRef)
	if err != nil {
		o.cleanupRefs(c)
		return nil, newFetchError(err, "")
	}
	base, err := o.vcs.RevParse(c.baseRef)
	if err != nil {
		o.cleanupRefs(c)
		return nil, newFetchError(err, "")
	}

	if pr.HeadSHA != "" && head != pr.HeadSHA {
		log.Warn().
			Str("api", pr.HeadSHA).
			Str("fetched", head).
			Msg("head commit moved since the tracker metadata was written")
	}

	c.BaseTip = base
	c.Head = head
	return c, nil
}

func (o *Orchestrator) construct(c *Candidate, p *progress) error {
	p.stage(StageConstruct, fmt.Sprintf("merging %s into %s", shortSHA(c.Head), c.PR.Destination))

	c.Message = RenderMessage(c.PR, c.Head, o.cfg.Remote)

	if out, err := o.vcs.CheckoutBranch(c.Branch, c.BaseTip); err != nil {
		o.cleanupRefs(c)
		return errors.Wrap(err, out)
	}

	out, err := o.vcs.MergeNoFF(c.Head, c.Message)
	if err != nil {
		// no partial merge may remain visible
		o.vcs.AbortMerge()
		o.rollback(c)
		return newMergeConflict(err, out)
	}

	commit, err := o.vcs.RevParse("HEAD")
	if err != nil {
		o.rollback(c)
		return errors.Wrap(err, "cannot resolve the merge commit")
	}
	c.Commit = commit

	log.Info().Str("commit", commit).Msg("constructed merge commit")
	return nil
}

func (o *Orchestrator) verifyTree(c *Candidate, p *progress) error {
	p.stage(StageVerifyTree, "verifying tree digest")

	digest, err := o.vcs.TreeDigest("HEAD")
	if err != nil {
		return errors.Wrap(err, "cannot compute tree digest")
	}

	msg, err := o.vcs.ShowMessage("HEAD")
	if err != nil {
		return errors.Wrap(err, "cannot read the merge commit message")
	}
	msg = strings.TrimRight(msg, "\n")

	embedded, err := treehash.FromMessage(msg)
	switch {
	case err != nil:
		return &TreeHashMismatch{Computed: digest, Err: err}
	case embedded == "":
		c.Message = msg + "\n\n" + treehash.Trailer(digest)
		if out, err := o.vcs.Amend(c.Message); err != nil {
			return errors.Wrap(err, out)
		}
		commit, err := o.vcs.RevParse("HEAD")
		if err != nil {
			return errors.Wrap(err, "cannot resolve the amended commit")
		}
		c.Commit = commit
	case embedded != digest:
		return &TreeHashMismatch{Embedded: embedded, Computed: digest}
	default:
		c.Message = msg
	}

	c.TreeHash = digest
	log.Info().Str("tree-sha512", digest).Msg("tree digest verified")
	return nil
}

func (o *Orchestrator) review(c *Candidate, p *progress) (bool, error) {
	p.stage(StageReview, "presenting merge for review")

	graph, err := o.vcs.LogGraph(c.BaseTip, "HEAD")
	if err != nil {
		return false, errors.Wrap(err, "cannot render the commit graph")
	}
	fmt.Fprintln(o.out, graph)

	diffText, err := o.vcs.Diff(c.BaseTip, "HEAD")
	if err != nil {
		return false, errors.Wrap(err, "cannot compute the merge diff")
	}

	if err := renderDiffStats(diffText, o.out); err != nil {
		log.Warn().Err(err).Msg("cannot parse diff for stats")
	}
	fmt.Fprintln(o.out, diffText)
	fmt.Fprintln(o.out, c.Message)

	if o.cfg.TestCmd != "" {
		p.stage(StageReview, fmt.Sprintf("running test command: %s", o.cfg.TestCmd))
		if out, err := o.vcs.RunShell(o.cfg.TestCmd); err != nil {
			return false, errors.Wrapf(err, "test command failed:\n%s", out)
		}
	}

	return o.confirm.Confirm(fmt.Sprintf("Merge pull request #%d into %s?", c.PR.ID, c.PR.Destination))
}

func (o *Orchestrator) sign(c *Candidate, p *progress) (bool, error) {
	message := "Sign the merge commit?"
	if o.cfg.SigningKey != "" {
		message = fmt.Sprintf("Sign the merge commit with key %s?", o.cfg.SigningKey)
	}

	ok, err := o.confirm.Confirm(message)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	p.stage(StageSign, "signing merge commit")

	if out, err := o.signer.Sign(c.Message); err != nil {
		return false, newSignatureError(err, out)
	}
	if out, err := o.signer.Verify(); err != nil {
		return false, newSignatureError(err, out)
	}

	commit, err := o.vcs.RevParse("HEAD")
	if err != nil {
		return false, errors.Wrap(err, "cannot resolve the signed commit")
	}
	c.Commit = commit

	log.Info().Str("commit", commit).Msg("merge commit signed")
	return true, nil
}

func (o *Orchestrator) publish(c *Candidate, p *progress) error {
	ok, err := o.confirm.Confirm(fmt.Sprintf(
		"Push %s to %s/%s?", shortSHA(c.Commit), o.cfg.Remote.FullName(), c.PR.Destination,
	))
	if err != nil {
		return err
	}
	if !ok {
		// only the branch is needed to push later
		o.cleanupRefs(c)
		fmt.Fprintf(o.out, "Signed merge commit %s retained on %s\n", shortSHA(c.Commit), c.Branch)
		return nil
	}

	p.stage(StagePublish, fmt.Sprintf("pushing to %s", c.PR.Destination))

	refspec := fmt.Sprintf("HEAD:refs/heads/%s", c.PR.Destination)
	if out, err := o.vcs.Push(o.gitURL(), refspec); err != nil {
		return newPublishError(err, out)
	}

	o.cleanupRefs(c)
	p.stage(StageDone, fmt.Sprintf("merged pull request #%d", c.PR.ID))
	fmt.Fprintf(o.out, "Merged pull request #%d as %s\n", c.PR.ID, c.Commit)
	return nil
}

// rollback restores the pre-run checkout and removes all scratch state.
func (o *Orchestrator) rollback(c *Candidate) {
	if c.prev != "" {
		if _, err := o.vcs.Checkout(c.prev); err != nil {
			log.Warn().Err(err).Msg("cannot restore the previous checkout")
		}
	}
	if c.Branch != "" {
		if _, err := o.vcs.DeleteBranch(c.Branch); err != nil {
			log.Warn().Err(err).Str("branch", c.Branch).Msg("cannot delete the scratch branch")
		}
	}

	o.cleanupRefs(c)
}

func (o *Orchestrator) cleanupRefs(c *Candidate) {
	for _, ref := range []string{c.headRef, c.baseRef} {
		if ref == "" {
			continue
		}
		if _, err := o.vcs.DeleteRef(ref); err != nil {
			log.Warn().Err(err).Str("ref", ref).Msg("cannot delete scratch ref")
		}
	}
}
