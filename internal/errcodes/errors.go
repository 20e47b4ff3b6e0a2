package errcodes

import "errors"

var (
	ErrMissingRepository               = errors.New("target repository is missing, set githubmerge.repository")
	ErrRepositoryMustBeInFormOwnerRepo = errors.New("repository must be in the form of 'owner/repo'")
	ErrMissingPullRequestID            = errors.New("pull request id is missing")
	ErrInvalidPullRequestID            = errors.New("pull request id must be a positive integer")
)
