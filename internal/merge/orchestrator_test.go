package merge

import (
	"bytes"
	"strings"
	"testing"

	"ghmerge/internal/config"
	"ghmerge/internal/domain/pullrequest"
	"ghmerge/internal/pkg/client"
	"ghmerge/internal/treehash"
	"ghmerge/mocks"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const (
	headSHA = "abc1230000000000000000000000000000000000"
	baseSHA = "def4560000000000000000000000000000000000"
)

var testDigest = strings.Repeat("ab", 64)

const testDiff = `diff --git a/main.c b/main.c
index 0000000..1111111 100644
--- a/main.c
+++ b/main.c
@@ -1,2 +1,2 @@
-old line
+new line
 context
`

func testPR() *pullrequest.Entity {
	return &pullrequest.Entity{
		ID:          1234,
		Title:       "Fix off-by-one in ring buffer",
		Body:        "The read pointer overshot by one on wrap-around.",
		State:       pullrequest.StateOpen,
		Author:      "contributor",
		Source:      "fix-ring-buffer",
		HeadSHA:     headSHA,
		Destination: "master",
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Remote: &client.Repository{
			Provider: client.RepositoryProviderGithub,
			Owner:    "owner",
			Name:     "repo",
		},
		SigningKey: "0xDEADBEEF",
	}
}

func testVCS() *mocks.VCS {
	vcs := mocks.NewVCS()
	vcs.Revs["refs/ghmerge/1234/head"] = headSHA
	vcs.Revs["refs/ghmerge/1234/base"] = baseSHA
	vcs.Digest = testDigest
	vcs.DiffOut = testDiff
	vcs.GraphOut = "*   abc1230 contributor Fix off-by-one in ring buffer"
	return vcs
}

type fixture struct {
	vcs       *mocks.VCS
	tracker   *mocks.Tracker
	signer    *mocks.Signer
	confirmer *mocks.Confirmer
	cfg       *config.Config
	out       *bytes.Buffer
}

func newFixture(answers ...bool) *fixture {
	return &fixture{
		vcs:       testVCS(),
		tracker:   &mocks.Tracker{PR: testPR()},
		signer:    &mocks.Signer{},
		confirmer: &mocks.Confirmer{Answers: answers},
		cfg:       testConfig(),
		out:       &bytes.Buffer{},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return New(&Options{
		VCS:       f.vcs,
		Tracker:   f.tracker,
		Signer:    f.signer,
		Confirmer: f.confirmer,
		Config:    f.cfg,
		Out:       f.out,
	})
}

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(true, true, true)
	err := f.orchestrator().Run(1234)
	assert.NoError(t, err)

	t.Run("constructs the merge on top of the base tip", func(t *testing.T) {
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "CheckoutBranch", Args: []string{"ghmerge/1234", baseSHA}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "MergeNoFF", Args: []string{headSHA, RenderMessage(testPR(), headSHA, f.cfg.Remote)}})
	})

	t.Run("message first line is the pull request title", func(t *testing.T) {
		first := strings.SplitN(f.vcs.Message(), "\n", 2)[0]
		assert.Equal(t, "Merge #1234: Fix off-by-one in ring buffer", first)
	})

	t.Run("message carries exactly one matching trailer", func(t *testing.T) {
		v, err := treehash.FromMessage(f.vcs.Message())
		assert.NoError(t, err)
		assert.Equal(t, testDigest, v)
	})

	t.Run("signs the final message", func(t *testing.T) {
		assert.Len(t, f.signer.Signed, 1)
		assert.Equal(t, f.vcs.Message(), f.signer.Signed[0])
	})

	t.Run("shows the commit graph during review", func(t *testing.T) {
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "LogGraph", Args: []string{baseSHA, "HEAD"}})
		assert.Contains(t, f.out.String(), "Fix off-by-one in ring buffer")
	})

	t.Run("pushes to the base branch", func(t *testing.T) {
		assert.Equal(t, []string{"https://github.com/owner/repo.git HEAD:refs/heads/master"}, f.vcs.Pushed)
	})

	t.Run("cleans up scratch refs", func(t *testing.T) {
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/head"}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/base"}})
	})

	t.Run("asked for review, signing and publishing", func(t *testing.T) {
		assert.Len(t, f.confirmer.Prompts, 3)
	})
}

func TestRun_FetchFailures(t *testing.T) {
	t.Run("tracker error is fatal before any state change", func(t *testing.T) {
		f := newFixture()
		f.tracker.Err = errors.New("connection refused")

		err := f.orchestrator().Run(1234)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.False(t, f.vcs.Called("CheckoutBranch"))
		assert.False(t, f.vcs.Called("MergeNoFF"))
	})

	t.Run("closed pull request is fatal", func(t *testing.T) {
		f := newFixture()
		f.tracker.PR.State = pullrequest.StateClosed

		err := f.orchestrator().Run(1234)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "closed")
	})

	t.Run("fetch command failure carries the output verbatim", func(t *testing.T) {
		f := newFixture()
		f.vcs.FetchErr = errors.New("exit status 128")
		f.vcs.FetchOut = "fatal: couldn't find remote ref refs/pull/1234/head"

		err := f.orchestrator().Run(1234)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "couldn't find remote ref")
	})

	t.Run("unresolvable scratch ref removes both scratch refs", func(t *testing.T) {
		f := newFixture()
		delete(f.vcs.Revs, "refs/ghmerge/1234/head")

		err := f.orchestrator().Run(1234)
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/head"}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/base"}})
		assert.False(t, f.vcs.Called("CheckoutBranch"))
	})
}

func TestRun_MergeConflict(t *testing.T) {
	f := newFixture()
	f.vcs.MergeErr = errors.New("exit status 1")
	f.vcs.MergeOut = "CONFLICT (content): Merge conflict in main.c"

	err := f.orchestrator().Run(1234)
	var conflict *MergeConflict
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "CONFLICT (content)")

	t.Run("workspace is rolled back", func(t *testing.T) {
		assert.True(t, f.vcs.Called("AbortMerge"))
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "Checkout", Args: []string{"master"}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteBranch", Args: []string{"ghmerge/1234"}})
	})

	t.Run("user is never prompted", func(t *testing.T) {
		assert.Empty(t, f.confirmer.Prompts)
	})
}

func TestRun_TreeHashMismatch(t *testing.T) {
	t.Run("mismatching embedded trailer halts before review", func(t *testing.T) {
		f := newFixture()
		f.vcs.MessageOverride = "subject\n\n" + treehash.Trailer(strings.Repeat("cd", 64))

		err := f.orchestrator().Run(1234)
		var mismatch *TreeHashMismatch
		assert.ErrorAs(t, err, &mismatch)
		assert.Equal(t, testDigest, mismatch.Computed)
		assert.Empty(t, f.confirmer.Prompts)
		assert.Empty(t, f.signer.Signed)
		assert.True(t, f.vcs.Called("DeleteBranch"))
	})

	t.Run("foreign digest algorithm is a mismatch", func(t *testing.T) {
		f := newFixture()
		f.vcs.MessageOverride = "subject\n\nTree-SHA256: abcdef"

		err := f.orchestrator().Run(1234)
		var mismatch *TreeHashMismatch
		assert.ErrorAs(t, err, &mismatch)
		assert.ErrorIs(t, err, treehash.ErrForeignDigest)
	})

	t.Run("matching embedded trailer is accepted without amending", func(t *testing.T) {
		f := newFixture(true, false)
		f.vcs.MessageOverride = "subject\n\n" + treehash.Trailer(testDigest)

		err := f.orchestrator().Run(1234)
		assert.NoError(t, err)
		assert.False(t, f.vcs.Called("Amend"))
	})
}

func TestRun_ReviewDeclined(t *testing.T) {
	f := newFixture(false)

	err := f.orchestrator().Run(1234)
	assert.ErrorIs(t, err, ErrAborted)

	t.Run("branch state is restored", func(t *testing.T) {
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "Checkout", Args: []string{"master"}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteBranch", Args: []string{"ghmerge/1234"}})
	})

	t.Run("nothing irreversible happened", func(t *testing.T) {
		assert.Empty(t, f.signer.Signed)
		assert.Empty(t, f.vcs.Pushed)
	})
}

func TestRun_ReviewRenderFailure(t *testing.T) {
	f := newFixture()
	f.vcs.GraphErr = errors.New("exit status 128")

	err := f.orchestrator().Run(1234)
	assert.Error(t, err)
	assert.Empty(t, f.confirmer.Prompts)

	t.Run("branch state is restored", func(t *testing.T) {
		assert.True(t, f.vcs.Called("DeleteBranch"))
	})
}

func TestRun_TestCommand(t *testing.T) {
	t.Run("runs the configured test command before asking", func(t *testing.T) {
		f := newFixture(true, false)
		f.cfg.TestCmd = "make check"

		err := f.orchestrator().Run(1234)
		assert.NoError(t, err)
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "RunShell", Args: []string{"make check"}})
	})

	t.Run("test failure aborts with the output attached", func(t *testing.T) {
		f := newFixture(true)
		f.cfg.TestCmd = "make check"
		f.vcs.ShellErr = errors.New("exit status 2")
		f.vcs.ShellOut = "main.c:10: error: expected ';'"

		err := f.orchestrator().Run(1234)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected ';'")
		assert.Empty(t, f.confirmer.Prompts)
		assert.True(t, f.vcs.Called("DeleteBranch"))
	})
}

func TestRun_SignStage(t *testing.T) {
	t.Run("declining the signature keeps the unsigned commit", func(t *testing.T) {
		f := newFixture(true, false)

		err := f.orchestrator().Run(1234)
		assert.NoError(t, err)
		assert.Contains(t, f.out.String(), "left unsigned")
		assert.Empty(t, f.vcs.Pushed)
		assert.False(t, f.vcs.Called("DeleteBranch"))
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/head"}})
	})

	t.Run("signing failure halts retryably", func(t *testing.T) {
		f := newFixture(true, true)
		f.signer.SignErr = errors.New("gpg: signing failed: No secret key")

		err := f.orchestrator().Run(1234)
		var sigErr *SignatureError
		assert.ErrorAs(t, err, &sigErr)
		assert.False(t, f.vcs.Called("DeleteBranch"))
		assert.Empty(t, f.vcs.Pushed)
	})

	t.Run("verification failure is a signature error", func(t *testing.T) {
		f := newFixture(true, true)
		f.signer.VerifyErr = errors.New("gpg: BAD signature")

		err := f.orchestrator().Run(1234)
		var sigErr *SignatureError
		assert.ErrorAs(t, err, &sigErr)
	})
}

func TestRun_PublishStage(t *testing.T) {
	t.Run("declining the push keeps the signed commit", func(t *testing.T) {
		f := newFixture(true, true, false)

		err := f.orchestrator().Run(1234)
		assert.NoError(t, err)
		assert.Contains(t, f.out.String(), "retained")
		assert.Empty(t, f.vcs.Pushed)
		assert.False(t, f.vcs.Called("DeleteBranch"))
	})

	t.Run("declining the push still removes the scratch refs", func(t *testing.T) {
		f := newFixture(true, true, false)

		err := f.orchestrator().Run(1234)
		assert.NoError(t, err)
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/head"}})
		assert.Contains(t, f.vcs.Calls, mocks.VCSCall{Name: "DeleteRef", Args: []string{"refs/ghmerge/1234/base"}})
	})

	t.Run("rejected push halts retryably", func(t *testing.T) {
		f := newFixture(true, true, true)
		f.vcs.PushErr = errors.New("exit status 1")
		f.vcs.PushOut = "! [rejected] (non-fast-forward)"

		err := f.orchestrator().Run(1234)
		var pubErr *PublishError
		assert.ErrorAs(t, err, &pubErr)
		assert.Contains(t, err.Error(), "non-fast-forward")
		assert.Len(t, f.signer.Signed, 1)
		assert.False(t, f.vcs.Called("DeleteBranch"))
	})
}

func TestRun_ConfirmerFailure(t *testing.T) {
	f := newFixture()
	f.confirmer.Err = errors.New("terminal closed")

	err := f.orchestrator().Run(1234)
	assert.Error(t, err)
	assert.True(t, f.vcs.Called("DeleteBranch"))
}
