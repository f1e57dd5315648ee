package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ReadRequests parses request lines from r and submits them to q until r
// is exhausted. Parse errors are answered directly on w as ERROR: lines.
func ReadRequests(r io.Reader, q *Queue, w io.Writer, logger logrus.FieldLogger) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			logger.WithField("line", line).WithError(err).Warn("Rejected control request")
			fmt.Fprintf(w, "ERROR:%v\n", err)
			continue
		}
		q.Submit(cmd)
	}
	return sc.Err()
}

// WriteReplies copies reply lines to w until replies is closed. Each line
// is also logged, so the goroutine that drains the queue never has to.
// Query answers log at debug level. A nil logger disables logging.
func WriteReplies(replies <-chan string, w io.Writer, logger logrus.FieldLogger) {
	for line := range replies {
		fmt.Fprintln(w, line)
		if logger != nil {
			logReply(logger, line)
		}
	}
}

func logReply(logger logrus.FieldLogger, line string) {
	entry := logger.WithField("reply", line)
	switch {
	case strings.HasPrefix(line, "ERROR:"):
		entry.Warn("Control command failed")
	case strings.HasPrefix(line, "DATA:STATUS:"), strings.HasPrefix(line, "DATA:FREQ:"):
		entry.Debug("Control query answered")
	default:
		entry.Info("Control command applied")
	}
}
