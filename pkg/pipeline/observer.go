package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/citytour/pkg/core/tour"
)

// logObserver reports optimizer progress at debug level. The reduced matrix
// of each pass is dumped as well, which is verbose for large routes.
type logObserver struct {
	logger *log.Logger
}

func (o *logObserver) OnStateChange(from, to tour.State) {
	o.logger.Debug("optimizer state", "from", from, "to", to)
}

func (o *logObserver) OnPass(ev tour.PassEvent) {
	if o.logger.GetLevel() > log.DebugLevel {
		return
	}
	o.logger.Debug("reduced matrix", "pass", ev.Pass, "constant", ev.Constant, "edges", ev.Reduced.String())
	c := ev.Commit
	o.logger.Debug("committed edge",
		"pass", ev.Pass,
		"from", c.Edge.From,
		"to", c.Edge.To,
		"regret", c.Regret,
		"forced", c.Forced,
		"removed", c.Removed,
		"remaining", ev.Remaining)
}

var _ tour.Observer = (*logObserver)(nil)
