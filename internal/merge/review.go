package merge

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/sourcegraph/go-diff/diff"
)

// renderDiffStats prints a per-file summary of the merge diff. The raw
// diff follows separately; the table is there to make large merges
// reviewable at a glance.
func renderDiffStats(diffText string, out io.Writer) error {
	if diffText == "" {
		return nil
	}

	fds, err := diff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return err
	}

	table := uitable.New()
	table.AddRow("FILE", "HUNKS", "ADDED", "DELETED")
	for _, fd := range fds {
		stat := fd.Stat()
		table.AddRow(diffFileName(fd), len(fd.Hunks), stat.Added+stat.Changed, stat.Deleted+stat.Changed)
	}

	_, err = fmt.Fprintln(out, table)
	return err
}

func diffFileName(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "/dev/null" {
		name = fd.OrigName
	}
	if len(name) > 2 && (name[:2] == "a/" || name[:2] == "b/") {
		name = name[2:]
	}

	return name
}
