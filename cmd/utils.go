package cmd

import (
	"fmt"
	"os"

	"ghmerge/internal/systemcode"

	"github.com/spf13/cobra"
)

type runCommandError func(*cobra.Command, []string) error
type runCommandNoError func(*cobra.Command, []string)

// RunCommandWrapper reports command errors and exits with the generic
// error code. Clean user aborts return nil from the wrapped command and
// keep the zero exit status.
func RunCommandWrapper(fn runCommandError) runCommandNoError {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(systemcode.ErrorCodeGeneric)
		}
	}
}
