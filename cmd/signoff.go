package cmd

import (
	"fmt"
	"strings"

	"ghmerge/internal/config"
	"ghmerge/internal/gitutils"
	"ghmerge/internal/merge"
	"ghmerge/internal/signer"
	"ghmerge/internal/treehash"

	"github.com/spf13/cobra"
)

var signoffCmd = &cobra.Command{
	Use:   "signoff",
	Short: "Add a tree digest trailer to HEAD and GPG-sign it",
	Long: `Embeds the SHA512 tree digest of HEAD as a Tree-SHA512 trailer in its
commit message and signs the commit in place. A commit that already
carries a matching trailer and a good signature is left untouched; a
mismatching trailer is an error and must be removed first.`,
	Args: cobra.NoArgs,
	Run:  RunCommandWrapper(runSignoff),
}

func init() {
	rootCmd.AddCommand(signoffCmd)
}

func runSignoff(cmd *cobra.Command, args []string) error {
	repo, err := gitutils.Open()
	if err != nil {
		return err
	}
	cli := gitutils.NewCLI(repo.Path())

	digest, err := repo.TreeDigest("HEAD")
	if err != nil {
		return err
	}

	msg, err := cli.ShowMessage("HEAD")
	if err != nil {
		return err
	}
	msg = strings.TrimRight(msg, "\n")

	embedded, err := treehash.FromMessage(msg)
	switch {
	case err != nil:
		return &merge.TreeHashMismatch{Computed: digest, Err: err}
	case embedded == digest:
		fmt.Println("Warning: commit already carries a valid tree digest")
		if out, err := cli.VerifyCommit("HEAD"); err == nil {
			// already signed too, nothing to do
			fmt.Print(out)
			return nil
		}
	case embedded != "":
		return &merge.TreeHashMismatch{Embedded: embedded, Computed: digest}
	default:
		msg = msg + "\n\n" + treehash.Trailer(digest)
	}

	fmt.Println(msg)

	params := &config.Params{}
	config.FillDefaultParams(params, repo)

	gpg := signer.New(cli, params.SigningKey)
	if out, err := gpg.Sign(msg); err != nil {
		fmt.Print(out)
		return err
	}

	out, err := gpg.Verify()
	fmt.Print(out)
	return err
}
