package cmd

import (
	"fmt"
	"strings"

	"ghmerge/internal/prompt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ghmerge [pull request id]",
	Short: "ghmerge merges pull requests with signed, verifiable merge commits",
	Long: `Command-line utility for merging GitHub pull requests the careful way:
the merge commit is reconstructed deterministically, carries a digest of the
full tree contents, and is reviewed, signed and pushed only after explicit
confirmation.`,
	Version: fmt.Sprintf("%v, commit %v, built at %v", version, commit, date),
	Args:    cobra.MaximumNArgs(1),
	Run: RunCommandWrapper(func(cmd *cobra.Command, args []string) error {
		id, err := pullRequestArg(args, idPrompt)
		if err != nil {
			return err
		}
		if id == "" {
			return cmd.Help()
		}

		return runMerge(cmd, []string{id})
	}),
}

var idPrompt prompt.Inputer = prompt.Terminal{}

// pullRequestArg takes the pull request id from the command line, or
// asks for one when it was omitted. An empty answer means quit.
func pullRequestArg(args []string, in prompt.Inputer) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	answer, err := in.Input("Pull request id to merge (empty to quit)")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

func init() {
	rootCmd.Flags().StringP("repository", "r", "", "target repository in the form owner/repo")
}

func Execute() error {
	return rootCmd.Execute()
}
