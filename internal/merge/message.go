package merge

import (
	"fmt"
	"strings"

	"ghmerge/internal/domain/pullrequest"
	"ghmerge/internal/pkg/client"
	"ghmerge/internal/treehash"
)

const excerptMaxLines = 10

// RenderMessage produces the merge commit message for a pull request:
// subject, head commit identification and an excerpt of the description.
// The result is a pure function of the pull request metadata and the
// head commit, so independent runs over the same inputs construct
// byte-identical commit content.
func RenderMessage(pr *pullrequest.Entity, headSHA string, remote *client.Repository) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Merge #%d: %s\n", pr.ID, strings.TrimSpace(pr.Title))
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "%s %s (%s#%d)\n", shortSHA(headSHA), pr.Source, remote.FullName(), pr.ID)

	if excerpt := bodyExcerpt(pr.Body); excerpt != "" {
		fmt.Fprintf(&b, "\n%s\n", excerpt)
	}

	return strings.TrimRight(b.String(), "\n")
}

// bodyExcerpt normalizes and truncates the pull request description.
// Trailer-looking lines are dropped so a description can never smuggle a
// second tree hash trailer into the commit message.
func bodyExcerpt(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if treehash.IsTrailer(line) {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}

	if len(lines) > excerptMaxLines {
		lines = append(lines[:excerptMaxLines], "[...]")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
