package merge

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAborted is returned when the user declines the merge during review.
// It is a clean abort, not a failure; callers exit zero on it.
var ErrAborted = errors.New("merge aborted")

// externalError is the shared shape of stage failures caused by an
// external command: the cause plus the command's output verbatim.
type externalError struct {
	Output string
	Err    error
}

func (e *externalError) Unwrap() error { return e.Err }

func (e *externalError) detail() string {
	if e.Output == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\n%s", e.Err, e.Output)
}

// FetchError means the pull request or one of its refs could not be
// resolved. Nothing has been changed locally.
type FetchError struct{ externalError }

func (e *FetchError) Error() string { return "fetch failed: " + e.detail() }

func newFetchError(err error, output string) *FetchError {
	return &FetchError{externalError{Output: output, Err: err}}
}

// MergeConflict means the merge could not be constructed cleanly. The
// work area has been rolled back by the time it is returned.
type MergeConflict struct{ externalError }

func (e *MergeConflict) Error() string { return "merge conflict: " + e.detail() }

func newMergeConflict(err error, output string) *MergeConflict {
	return &MergeConflict{externalError{Output: output, Err: err}}
}

// TreeHashMismatch means the digest embedded in the commit message does
// not equal the digest recomputed from the tree. The run must not reach
// the signing stage.
type TreeHashMismatch struct {
	Embedded string
	Computed string
	Err      error
}

func (e *TreeHashMismatch) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tree hash mismatch: %v", e.Err)
	}
	return fmt.Sprintf("tree hash mismatch: commit carries %s, computed %s", e.Embedded, e.Computed)
}

func (e *TreeHashMismatch) Unwrap() error { return e.Err }

// SignatureError means signing or signature verification failed. The
// constructed commit is retained unsigned so signing can be retried.
type SignatureError struct{ externalError }

func (e *SignatureError) Error() string { return "signing failed: " + e.detail() }

func newSignatureError(err error, output string) *SignatureError {
	return &SignatureError{externalError{Output: output, Err: err}}
}

// PublishError means the push was rejected. The local signed commit is
// retained so publishing can be retried.
type PublishError struct{ externalError }

func (e *PublishError) Error() string { return "push failed: " + e.detail() }

func newPublishError(err error, output string) *PublishError {
	return &PublishError{externalError{Output: output, Err: err}}
}
