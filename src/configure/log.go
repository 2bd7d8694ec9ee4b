package configure

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLog configures the package-level logrus logger from settings.
func InitLog(s Settings) {
	switch s.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if l, err := log.ParseLevel(s.Level); err == nil {
		log.SetLevel(l)
	}
	log.SetReportCaller(log.IsLevelEnabled(log.DebugLevel))

	var out io.Writer = os.Stderr
	if s.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    s.LogMaxSizeMB,
			MaxBackups: s.LogMaxBackups,
			Compress:   true,
		})
	}
	log.SetOutput(out)
}
