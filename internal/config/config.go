package config

import (
	"ghmerge/internal/errcodes"
	"ghmerge/internal/pkg/client"

	"github.com/spf13/viper"
)

// Config carries everything the merge flow reads from the outside world,
// assembled once at startup instead of consulted ad hoc mid-run.
type Config struct {
	Remote     *client.Repository
	TestCmd    string
	SigningKey string
	Host       string
	AuthToken  string
}

type Params struct {
	Repository string
	TestCmd    string
	SigningKey string
	Host       string
	AuthToken  string
}

// gitConfigSource reads options from the local repository configuration.
type gitConfigSource interface {
	ConfigValue(section, key string) string
}

type paramsFiller interface {
	Fill(params *Params)
}

type gitConfigParamsFiller struct {
	repo gitConfigSource
}

func (pf *gitConfigParamsFiller) Fill(params *Params) {
	if pf.repo == nil {
		return
	}

	if v := pf.repo.ConfigValue("githubmerge", "repository"); v != "" {
		params.Repository = v
	}
	if v := pf.repo.ConfigValue("githubmerge", "testcmd"); v != "" {
		params.TestCmd = v
	}
	if v := pf.repo.ConfigValue("githubmerge", "host"); v != "" {
		params.Host = v
	}
	if v := pf.repo.ConfigValue("githubmerge", "ghtoken"); v != "" {
		params.AuthToken = v
	}
	if v := pf.repo.ConfigValue("user", "signingkey"); v != "" {
		params.SigningKey = v
	}
}

type viperParamsFiller struct{}

func (pf *viperParamsFiller) Fill(params *Params) {
	if v := viper.GetString("githubmerge.repository"); v != "" {
		params.Repository = v
	}
	if v := viper.GetString("githubmerge.testcmd"); v != "" {
		params.TestCmd = v
	}
	if v := viper.GetString("githubmerge.host"); v != "" {
		params.Host = v
	}
	if v := viper.GetString("githubmerge.ghtoken"); v != "" {
		params.AuthToken = v
	}
	if v := viper.GetString("githubmerge.signingkey"); v != "" {
		params.SigningKey = v
	}
}

// FillDefaultParams runs the filler chain; later fillers win, so values
// from the ghmerge config file override the repository configuration.
func FillDefaultParams(params *Params, repo gitConfigSource) {
	paramsFillers := []paramsFiller{
		&gitConfigParamsFiller{repo},
		&viperParamsFiller{},
	}

	for _, pf := range paramsFillers {
		pf.Fill(params)
	}
}

func Load(repo gitConfigSource) (*Config, error) {
	params := &Params{}
	FillDefaultParams(params, repo)
	return FromParams(params)
}

// FromParams validates assembled parameters and produces the config
// object handed to the merge flow.
func FromParams(params *Params) (*Config, error) {
	if params.Repository == "" {
		return nil, errcodes.ErrMissingRepository
	}

	r, err := client.NewRepositoryFromOptions(&client.RepositoryOptions{
		Provider:           client.RepositoryProviderGithub,
		FullRepositoryName: params.Repository,
	})
	if err != nil {
		return nil, err
	}

	return &Config{
		Remote:     r,
		TestCmd:    params.TestCmd,
		SigningKey: params.SigningKey,
		Host:       params.Host,
		AuthToken:  params.AuthToken,
	}, nil
}
