package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// EnvLevel names the environment variable that turns logging on.
const EnvLevel = "RFC4648_LOG"

var (
	log  *Logger
	once sync.Once
)

// Logger is the process-wide logrus logger. It writes to stderr so that
// stdout stays reserved for encoded or decoded data.
type Logger struct {
	*logrus.Logger
}

func initialize() {
	once.Do(func() {
		log = &Logger{}
		log.Logger = logrus.New()
		// We do not want to log by default
		log.SetOutput(io.Discard)
		log.SetLevel(logrus.PanicLevel)

		if level := os.Getenv(EnvLevel); level != "" {
			_ = log.Configure(level)
		}
	})
}

// Get returns the initialized Logger.
func Get() *Logger {
	initialize()
	return log
}

// Configure enables logging to stderr at the named level. An empty name
// leaves the logger as it is. Unknown names fall back to debug and the parse
// error is returned.
func (l *Logger) Configure(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		return nil
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.DebugLevel
	}

	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	l.WithField("level", l.GetLevel()).Debug("Logging enabled.")

	return err
}

// Silence discards all further output.
func (l *Logger) Silence() {
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
}

func init() {
	initialize()
}
