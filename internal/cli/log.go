package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat renders record timestamps as "14:32:01.45".
const logTimeFormat = "15:04:05.00"

// newLogger returns the leveled, timestamped logger shared by all commands.
// Commands reach it through log.FromContext on cmd.Context().
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// stage times one step of a command (layout, render) and reports its
// outcome once.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string) *stage {
	l.Debug("stage started", "stage", name)
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs the formatted summary at info level with the elapsed time,
// e.g. "Laid out 5 nodes (12ms)".
func (s *stage) done(format string, args ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), elapsed)
}

// failed logs err at debug level; the error itself reaches the user through
// the command's return value.
func (s *stage) failed(err error) {
	s.logger.Debug("stage failed", "stage", s.name, "elapsed", time.Since(s.start).Round(time.Millisecond), "err", err)
}
