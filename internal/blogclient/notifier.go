package blogclient

import "log/slog"

// Notifier receives the user-facing outcome of store actions.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Error(msg)
}
