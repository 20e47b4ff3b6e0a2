package gitutils

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// CLI runs git against a working copy. The merge, amend, sign and push
// operations have no go-git equivalent, so they shell out to the git
// binary the same way the signing identity does.
type CLI struct {
	Dir string
	Git string
}

func NewCLI(dir string) *CLI {
	git := os.Getenv("GIT")
	if git == "" {
		git = "git"
	}

	return &CLI{Dir: dir, Git: git}
}

// CommandError carries the verbatim output of a failed external command
// so it can be reported to the user untouched.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

var execCommand = exec.Command

func (c *CLI) run(args ...string) (string, error) {
	cmd := execCommand(c.Git, args...)
	cmd.Dir = c.Dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	log.Debug().Strs("args", args).Msg("running git")
	if err := cmd.Run(); err != nil {
		return buf.String(), &CommandError{Args: args, Output: buf.String(), Err: err}
	}

	return buf.String(), nil
}

func (c *CLI) Fetch(url string, refspecs ...string) (string, error) {
	return c.run(append([]string{"fetch", "-q", url}, refspecs...)...)
}

func (c *CLI) Checkout(ref string) (string, error) {
	return c.run("checkout", "-q", ref)
}

// CheckoutBranch resets name to the given commit and checks it out,
// creating it if needed.
func (c *CLI) CheckoutBranch(name, at string) (string, error) {
	return c.run("checkout", "-q", "-B", name, at)
}

func (c *CLI) DeleteBranch(name string) (string, error) {
	return c.run("branch", "-q", "-D", name)
}

func (c *CLI) DeleteRef(ref string) (string, error) {
	return c.run("update-ref", "-d", ref)
}

func (c *CLI) MergeNoFF(commit, message string) (string, error) {
	return c.run("merge", "-q", "--no-ff", "--no-edit", "-m", message, commit)
}

func (c *CLI) AbortMerge() (string, error) {
	return c.run("merge", "--abort")
}

func (c *CLI) Amend(message string) (string, error) {
	return c.run("commit", "-q", "--amend", "--no-edit", "-m", message)
}

// AmendSigned rewrites HEAD with the given message and a GPG signature.
// An empty key leaves the choice of signing identity to git.
func (c *CLI) AmendSigned(message, key string) (string, error) {
	sign := "--gpg-sign"
	if key != "" {
		sign = "--gpg-sign=" + key
	}
	return c.run("commit", "-q", "--amend", "--no-edit", sign, "-m", message)
}

func (c *CLI) VerifyCommit(ref string) (string, error) {
	return c.run("verify-commit", ref)
}

func (c *CLI) Push(url, refspec string) (string, error) {
	return c.run("push", url, refspec)
}

func (c *CLI) Diff(a, b string) (string, error) {
	return c.run("diff", a+".."+b)
}

// LogGraph renders the commit topology between two revisions, so a
// reviewer can see which commits a two-parent merge actually brings in.
func (c *CLI) LogGraph(a, b string) (string, error) {
	return c.run("log", "--graph", "--topo-order", "--pretty=format:%h %an %s", a+".."+b)
}

func (c *CLI) RevParse(rev string) (string, error) {
	out, err := c.run("rev-parse", rev)
	return strings.TrimSpace(out), err
}

func (c *CLI) SymbolicRef(ref string) (string, error) {
	out, err := c.run("symbolic-ref", "-q", ref)
	return strings.TrimSpace(out), err
}

func (c *CLI) ShowMessage(rev string) (string, error) {
	return c.run("show", "-s", "--format=%B", rev)
}

// RunShell executes a configured command line (the pre-sign test command)
// in the working copy.
func (c *CLI) RunShell(cmdline string) (string, error) {
	cmd := execCommand("sh", "-c", cmdline)
	cmd.Dir = c.Dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	log.Debug().Str("cmd", cmdline).Msg("running shell command")
	if err := cmd.Run(); err != nil {
		return buf.String(), &CommandError{Args: []string{"sh", "-c", cmdline}, Output: buf.String(), Err: err}
	}

	return buf.String(), nil
}
