package cmd

import (
	"fmt"

	"ghmerge/internal/gitutils"

	"github.com/spf13/cobra"
)

var treehashCmd = &cobra.Command{
	Use:   "treehash [<commit>]",
	Short: "Print the SHA512 tree digest of a commit",
	Long: `Computes the digest over the full recursive tree contents of the given
commit, HEAD by default. The same value is embedded as a Tree-SHA512
trailer in merge commits, so this command lets anyone verify one
independently.`,
	Args: cobra.MaximumNArgs(1),
	Run: RunCommandWrapper(func(cmd *cobra.Command, args []string) error {
		rev := "HEAD"
		if len(args) == 1 {
			rev = args[0]
		}

		repo, err := gitutils.Open()
		if err != nil {
			return err
		}

		digest, err := repo.TreeDigest(rev)
		if err != nil {
			return err
		}

		fmt.Println(digest)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(treehashCmd)
}
