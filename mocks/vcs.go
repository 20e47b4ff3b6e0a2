package mocks

import (
	"fmt"
	"strings"
)

type VCSCall struct {
	Name string
	Args []string
}

// VCS is a scripted in-memory stand-in for the git-backed version
// control layer. It records every call and keeps just enough state
// (HEAD commit and message) for the merge flow to run end to end.
type VCS struct {
	Calls []VCSCall

	Revs        map[string]string
	Symbolic    string
	MergeCommit string
	AmendCommit string

	FetchOut string
	FetchErr error

	CheckoutErr       error
	CheckoutBranchErr error
	DeleteBranchErr   error
	DeleteRefErr      error

	MergeOut string
	MergeErr error
	AmendErr error

	// MessageOverride, when set, is returned by ShowMessage instead of
	// the message recorded by the last merge or amend.
	MessageOverride string

	Digest    string
	DigestErr error

	DiffOut string
	DiffErr error

	GraphOut string
	GraphErr error

	ShellOut string
	ShellErr error

	PushOut string
	PushErr error

	Pushed []string

	message string
}

func NewVCS() *VCS {
	return &VCS{
		Revs:        map[string]string{},
		Symbolic:    "refs/heads/master",
		MergeCommit: "feedfeedfeedfeedfeedfeedfeedfeedfeedfeed",
		AmendCommit: "a3e4da3e4da3e4da3e4da3e4da3e4da3e4da3e4d",
	}
}

func (m *VCS) record(name string, args ...string) {
	m.Calls = append(m.Calls, VCSCall{Name: name, Args: args})
}

// Called reports whether any call with the given name was recorded.
func (m *VCS) Called(name string) bool {
	for _, c := range m.Calls {
		if c.Name == name {
			return true
		}
	}

	return false
}

func (m *VCS) Fetch(url string, refspecs ...string) (string, error) {
	m.record("Fetch", append([]string{url}, refspecs...)...)
	return m.FetchOut, m.FetchErr
}

func (m *VCS) RevParse(rev string) (string, error) {
	m.record("RevParse", rev)
	if v, ok := m.Revs[rev]; ok {
		return v, nil
	}

	return "", fmt.Errorf("unknown revision %s", rev)
}

func (m *VCS) SymbolicRef(ref string) (string, error) {
	m.record("SymbolicRef", ref)
	if m.Symbolic == "" {
		return "", fmt.Errorf("not a symbolic ref")
	}

	return m.Symbolic, nil
}

func (m *VCS) Checkout(ref string) (string, error) {
	m.record("Checkout", ref)
	return "", m.CheckoutErr
}

func (m *VCS) CheckoutBranch(name, at string) (string, error) {
	m.record("CheckoutBranch", name, at)
	return "", m.CheckoutBranchErr
}

func (m *VCS) DeleteBranch(name string) (string, error) {
	m.record("DeleteBranch", name)
	return "", m.DeleteBranchErr
}

func (m *VCS) DeleteRef(ref string) (string, error) {
	m.record("DeleteRef", ref)
	return "", m.DeleteRefErr
}

func (m *VCS) MergeNoFF(commit, message string) (string, error) {
	m.record("MergeNoFF", commit, message)
	if m.MergeErr != nil {
		return m.MergeOut, m.MergeErr
	}

	m.message = message
	m.Revs["HEAD"] = m.MergeCommit
	return m.MergeOut, nil
}

func (m *VCS) AbortMerge() (string, error) {
	m.record("AbortMerge")
	return "", nil
}

func (m *VCS) Amend(message string) (string, error) {
	m.record("Amend", message)
	if m.AmendErr != nil {
		return "", m.AmendErr
	}

	m.message = message
	m.Revs["HEAD"] = m.AmendCommit
	return "", nil
}

func (m *VCS) ShowMessage(rev string) (string, error) {
	m.record("ShowMessage", rev)
	if m.MessageOverride != "" {
		return m.MessageOverride + "\n", nil
	}

	return m.message + "\n", nil
}

func (m *VCS) Diff(a, b string) (string, error) {
	m.record("Diff", a, b)
	return m.DiffOut, m.DiffErr
}

func (m *VCS) LogGraph(a, b string) (string, error) {
	m.record("LogGraph", a, b)
	return m.GraphOut, m.GraphErr
}

func (m *VCS) Push(url, refspec string) (string, error) {
	m.record("Push", url, refspec)
	if m.PushErr != nil {
		return m.PushOut, m.PushErr
	}

	m.Pushed = append(m.Pushed, strings.Join([]string{url, refspec}, " "))
	return m.PushOut, nil
}

func (m *VCS) TreeDigest(rev string) (string, error) {
	m.record("TreeDigest", rev)
	return m.Digest, m.DigestErr
}

func (m *VCS) RunShell(cmdline string) (string, error) {
	m.record("RunShell", cmdline)
	return m.ShellOut, m.ShellErr
}

// Message returns the commit message as last written by merge or amend.
func (m *VCS) Message() string {
	return m.message
}
