package boot

import (
	"github.com/newcomb-luke/wustite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleSyncer feeds log output to the firmware one character at a time.
type consoleSyncer struct {
	console wustite.Console
}

func (s consoleSyncer) Write(p []byte) (int, error) {
	for _, c := range p {
		if c == '\n' {
			s.console.PutChar('\r')
		}
		s.console.PutChar(c)
	}
	return len(p), nil
}

func (s consoleSyncer) Sync() error {
	return nil
}

// NewConsoleLogger returns a logger that writes human-readable lines to the
// firmware console. There's no clock this early, so entries carry no time.
func NewConsoleLogger(console wustite.Console, level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		consoleSyncer{console: console},
		level)
	return zap.New(core).Sugar()
}
