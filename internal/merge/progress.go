package merge

import (
	"fmt"
	"io"

	"github.com/gosuri/uilive"
	"github.com/rs/zerolog/log"
)

// progress renders the current stage on a single updating line and
// mirrors transitions to the structured log.
type progress struct {
	w *uilive.Writer
}

func newProgress(out io.Writer) *progress {
	w := uilive.New()
	if out != nil {
		w.Out = out
	}

	return &progress{w: w}
}

func (p *progress) stage(s Stage, msg string) {
	fmt.Fprintf(p.w, "[%s] %s\n", s, msg)
	p.w.Flush()
	log.Info().Str("stage", s.String()).Msg(msg)
}

func (p *progress) done() {
	p.w.Flush()
}
