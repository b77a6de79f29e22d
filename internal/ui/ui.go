package ui

import "go.uber.org/zap"

// Navigator moves the buyer to another storefront location ("/", "/signin", a provider URL)
type Navigator interface {
	Navigate(target string)
}

// Notifier surfaces a message to the buyer
type Notifier interface {
	Info(message string)
	Error(message string)
}

// Discard is a Navigator and Notifier that does nothing
var Discard discard

type discard struct{}

func (discard) Navigate(string) {}
func (discard) Info(string)     {}
func (discard) Error(string)    {}

// LogNotifier writes notifications to a zap logger
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Info(message string) {
	n.logger.Info(message)
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn(message)
}
