package control

import (
	"github.com/sirupsen/logrus"
)

// DefaultQueueSize is the capacity of the command and reply channels.
const DefaultQueueSize = 32

// Queue carries commands from a reader goroutine into the goroutine that
// owns the canceller. Submit never blocks. Drain is meant to run at block
// boundaries inside the audio callback; it does not log, and a target used
// there must not log either (see afc.Canceller.SetLogger). Replies are
// logged by WriteReplies.
type Queue struct {
	commands chan Command
	replies  chan string
	dropped  int
	logger   logrus.FieldLogger
}

// NewQueue returns a queue with the given capacity. Sizes below one use
// DefaultQueueSize.
func NewQueue(size int, logger logrus.FieldLogger) *Queue {
	if size < 1 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = logrus.WithField("component", "control")
	}
	return &Queue{
		commands: make(chan Command, size),
		replies:  make(chan string, size),
		logger:   logger,
	}
}

// Submit enqueues cmd and reports whether it was accepted.
func (q *Queue) Submit(cmd Command) bool {
	select {
	case q.commands <- cmd:
		return true
	default:
		q.logger.WithField("command", cmd.String()).Warn("Control queue full, command dropped")
		return false
	}
}

// Drain applies every pending command to t and returns how many ran.
// Replies that do not fit into the reply channel are counted as dropped.
func (q *Queue) Drain(t Target) int {
	n := 0
	for {
		select {
		case cmd := <-q.commands:
			n++
			lines, err := Apply(t, cmd)
			if err != nil {
				q.reply("ERROR:" + err.Error())
				continue
			}
			for _, l := range lines {
				q.reply(l)
			}
		default:
			return n
		}
	}
}

func (q *Queue) reply(line string) {
	select {
	case q.replies <- line:
	default:
		q.dropped++
	}
}

// Replies returns the channel carrying reply lines.
func (q *Queue) Replies() <-chan string { return q.replies }

// Dropped returns the number of replies lost to a full reply channel. It
// must be read from the draining goroutine.
func (q *Queue) Dropped() int { return q.dropped }
