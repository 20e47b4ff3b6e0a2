package client

import (
	"fmt"
	"strings"

	"ghmerge/internal/errcodes"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrUnknownRepositoryProvider = errors.New("unknown repository provider, expected (github)")

type RepositoryProvider string

const RepositoryProviderGithub = RepositoryProvider("github")

func (rp RepositoryProvider) IsValid() bool {
	return rp == RepositoryProviderGithub
}

func ParseRepositoryProvider(s string) (RepositoryProvider, error) {
	switch s {
	case "github.com", "github":
		return RepositoryProviderGithub, nil
	}

	for _, a := range viper.GetStringSlice("github.aliases") {
		if a == s {
			return RepositoryProviderGithub, nil
		}
	}

	log.Warn().
		Str("provider", s).
		Msg("parsing unknown provider, add an alias to the local ghmerge configuration (.ghmergecfg)")

	return "", ErrUnknownRepositoryProvider
}

// Repository identifies the remote repository a merge is constructed
// against.
type Repository struct {
	Provider RepositoryProvider
	Owner    string
	Name     string
}

func (r *Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

type RepositoryOptions struct {
	Provider           RepositoryProvider
	FullRepositoryName string
}

func NewRepositoryFromOptions(options *RepositoryOptions) (*Repository, error) {
	v := strings.Split(options.FullRepositoryName, "/")
	if len(v) != 2 || v[0] == "" || v[1] == "" {
		return nil, errcodes.ErrRepositoryMustBeInFormOwnerRepo
	}

	return &Repository{
		Provider: options.Provider,
		Owner:    v[0],
		Name:     v[1],
	}, nil
}
