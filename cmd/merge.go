package cmd

import (
	"fmt"
	"strconv"

	"ghmerge/internal/config"
	"ghmerge/internal/configutil"
	"ghmerge/internal/domain/pullrequest"
	"ghmerge/internal/errcodes"
	"ghmerge/internal/gitutils"
	"ghmerge/internal/merge"
	"ghmerge/internal/pkg/github"
	"ghmerge/internal/prompt"
	"ghmerge/internal/signer"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:     "merge <pull request id>",
	Aliases: []string{"m"},
	Short:   "Merge a pull request",
	Long: `Reconstructs the merge commit for a pull request on top of the current
base branch, embeds a tree digest, and walks through review, signing and
publishing with interactive confirmation at each irreversible step.`,
	Args: cobra.ExactArgs(1),
	Run:  RunCommandWrapper(runMerge),
}

func init() {
	mergeCmd.Flags().StringP("repository", "r", "", "target repository in the form owner/repo")
	rootCmd.AddCommand(mergeCmd)
}

func parsePullRequestID(s string) (int, error) {
	if s == "" {
		return 0, errcodes.ErrMissingPullRequestID
	}

	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errcodes.ErrInvalidPullRequestID
	}

	return id, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	id, err := parsePullRequestID(args[0])
	if err != nil {
		return err
	}

	repo, err := gitutils.Open()
	if err != nil {
		return err
	}

	cfg, err := loadMergeConfig(cmd, repo)
	if err != nil {
		return err
	}

	vcs := gitutils.NewVersionControl(repo)
	tracker := github.New(&github.ClientOptions{
		Host:       cfg.Host,
		Token:      cfg.AuthToken,
		Repository: cfg.Remote,
	})

	orchestrator := merge.New(&merge.Options{
		VCS:       vcs,
		Tracker:   pullrequest.NewFetchService(tracker),
		Signer:    signer.New(vcs.CLI, cfg.SigningKey),
		Confirmer: prompt.Terminal{},
		Config:    cfg,
	})

	err = orchestrator.Run(id)
	if errors.Is(err, merge.ErrAborted) {
		fmt.Println("Merge aborted, branch state restored")
		return nil
	}

	return err
}

func loadMergeConfig(cmd *cobra.Command, repo *gitutils.Repository) (*config.Config, error) {
	params := &config.Params{}
	config.FillDefaultParams(params, repo)
	params.Repository = configutil.GetStringFlagOrDefault(cmd.Flags(), "repository", params.Repository)

	return config.FromParams(params)
}
