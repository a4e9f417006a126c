package config

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Terminal resolution - the court in logical units.
// Actual rendering scales to fit terminal size.
const (
	CourtWidth  = 160 // Logical court width
	CourtHeight = 96  // Logical court height (in sub-pixels, so 48 terminal rows)
)

// Web spectator court, in canvas pixels.
const (
	SpectateWidth  = 800
	SpectateHeight = 480
)

// Maximum render area; larger terminals get a centred court with a border.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Host holds the settings for the network-facing programs.
type Host struct {
	SSHHost        string
	SSHPort        string
	SSHHostKeyPath string
	WebHost        string
	WebPort        string
	SSHDisplayHost string
	RedisURL       string // Empty disables event publishing
	EventsChannel  string
	LogLevel       string
}

// LoadHost reads host settings from the environment (after loading .env).
func LoadHost() Host {
	Load()
	return Host{
		SSHHost:        GetEnv("SSH_HOST", "::"),
		SSHPort:        GetEnv("SSH_PORT", "2222"),
		SSHHostKeyPath: GetEnv("SSH_HOST_KEY", "/app/keys/host_key"),
		WebHost:        GetEnv("WEB_HOST", "0.0.0.0"),
		WebPort:        GetEnv("WEB_PORT", "8080"),
		SSHDisplayHost: GetEnv("SSH_DISPLAY_HOST", "your-server.com"),
		RedisURL:       GetEnv("REDIS_URL", ""),
		EventsChannel:  GetEnv("EVENTS_CHANNEL", "match_events"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
	}
}

// Logger builds the process logger at the configured level.
// Unknown levels fall back to info.
func (h Host) Logger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(h.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
