// Package logging holds the process-wide zap logger.
package logging

import "go.uber.org/zap"

var (
	logger  *zap.Logger
	sugared *zap.SugaredLogger
)

func init() {
	SetDevelopment()
}

// L returns the global raw logger.
func L() *zap.Logger {
	return logger
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return sugared
}

// SetDevelopment switches to a human-readable console logger.
func SetDevelopment() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	set(l)
}

// SetProduction switches to the JSON production logger.
func SetProduction() {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	set(l)
}

func set(l *zap.Logger) {
	logger = l
	sugared = l.Sugar()
}
