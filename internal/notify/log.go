package notify

import "github.com/rs/zerolog"

// LogNotifier writes run summaries to the structured log. Always
// wired, so a cycle outcome is visible even with email disabled.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		log: log.With().Str("notifier", "log").Logger(),
	}
}

// Name returns the notifier name
func (n *LogNotifier) Name() string {
	return "log"
}

// Send logs the notification
func (n *LogNotifier) Send(subject, body string) error {
	n.log.Info().
		Str("subject", subject).
		Str("body", body).
		Msg("Run notification")
	return nil
}
