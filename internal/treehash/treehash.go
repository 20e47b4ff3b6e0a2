package treehash

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// TrailerKey is the commit message trailer carrying the tree digest.
// The suffix is the output size of the digest in bits.
const TrailerKey = "Tree-SHA512"

var (
	ErrDuplicateTrailer = errors.New("commit message carries multiple tree hash trailers")
	ErrForeignDigest    = errors.New("commit message carries a tree hash trailer for a different digest algorithm")
)

// Digest computes the SHA512 digest over the full recursive tree contents
// of a commit. Every tracked file contributes the hex digest of its blob,
// two spaces, its full path and a newline to the overall hash, in byte
// order of the paths. The value is a pure function of the tree content so
// independent runs over the same commit agree on it.
func Digest(repo *git.Repository, commit plumbing.Hash) (string, error) {
	c, err := repo.CommitObject(commit)
	if err != nil {
		return "", errors.Wrap(err, "cannot read commit")
	}

	tree, err := c.Tree()
	if err != nil {
		return "", errors.Wrap(err, "cannot read commit tree")
	}

	var files []*object.File
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "cannot walk commit tree")
	}

	slices.SortFunc(files, func(a, b *object.File) bool {
		return a.Name < b.Name
	})

	overall := sha512.New()
	for _, f := range files {
		r, err := f.Blob.Reader()
		if err != nil {
			return "", errors.Wrapf(err, "cannot read blob for %s", f.Name)
		}

		inner := sha512.New()
		_, err = io.Copy(inner, r)
		r.Close()
		if err != nil {
			return "", errors.Wrapf(err, "cannot hash blob for %s", f.Name)
		}

		fmt.Fprintf(overall, "%s  %s\n", hex.EncodeToString(inner.Sum(nil)), f.Name)
	}

	return hex.EncodeToString(overall.Sum(nil)), nil
}

// Trailer renders the commit message trailer line for a digest.
func Trailer(digest string) string {
	return TrailerKey + ": " + digest
}

var trailerRe = regexp.MustCompile(`^Tree-SHA[0-9]+:`)

// IsTrailer reports whether a message line is a tree hash trailer,
// regardless of digest algorithm.
func IsTrailer(line string) bool {
	return trailerRe.MatchString(line)
}

// FromMessage extracts the tree hash trailer value from a commit message.
// It returns an empty string when no trailer is present. A second trailer
// or a trailer produced with a different digest algorithm is an error; the
// caller must treat both as a hash mismatch rather than accept them.
func FromMessage(msg string) (string, error) {
	var value string
	seen := false

	for _, line := range strings.Split(msg, "\n") {
		if !IsTrailer(line) {
			continue
		}
		if !strings.HasPrefix(line, TrailerKey+":") {
			return "", ErrForeignDigest
		}
		if seen {
			return "", ErrDuplicateTrailer
		}
		seen = true
		value = strings.TrimSpace(line[len(TrailerKey)+1:])
	}

	return value, nil
}
