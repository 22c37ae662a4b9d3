package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/kbukum/livecoll/config"
	"github.com/kbukum/livecoll/logger"
)

// ExporterInfo describes one telemetry exporter.
type ExporterInfo struct {
	Signal string // "metrics" or "tracing"
	Target string
}

// Summary tracks and displays how a runtime was bootstrapped.
type Summary struct {
	serviceName     string
	version         string
	libVersion      string
	environment     string
	runtimeID       string
	startupDuration time.Duration
	runtime         config.RuntimeConfig
	exporters       []ExporterInfo
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRuntime records the runtime identity and defaults.
func (s *Summary) TrackRuntime(id, environment, libVersion string, rc config.RuntimeConfig) {
	s.runtimeID = id
	s.environment = environment
	s.libVersion = libVersion
	s.runtime = rc
}

// TrackExporter records an enabled telemetry exporter.
func (s *Summary) TrackExporter(signal, target string) {
	s.exporters = append(s.exporters, ExporterInfo{Signal: signal, Target: target})
}

// Exporters returns the tracked exporters.
func (s *Summary) Exporters() []ExporterInfo {
	return s.exporters
}

// DisplaySummary prints the summary to w and logs it at debug level.
func (s *Summary) DisplaySummary(w io.Writer, log *logger.Logger) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s %s started in %.2fs (livecoll %s, %s)\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds(), s.libVersion, s.environment)

	fmt.Fprintf(w, "⚙️  Runtime %s\n", s.runtimeID)
	throttle := "synchronous"
	if s.runtime.DefaultThrottle > 0 {
		throttle = s.runtime.DefaultThrottle.String()
	}
	fmt.Fprintf(w, "   ├── default throttle: %s\n", throttle)
	moves := "off"
	if s.runtime.MoveDetection {
		moves = "on"
		if s.runtime.MoveCompareLimit != 0 {
			moves = fmt.Sprintf("on (compare limit %d)", s.runtime.MoveCompareLimit)
		}
	}
	fmt.Fprintf(w, "   └── move detection: %s\n", moves)

	fmt.Fprintf(w, "\n📊 Telemetry\n")
	if len(s.exporters) == 0 {
		fmt.Fprintf(w, "   └── ⏸️ disabled\n")
	}
	for i, e := range s.exporters {
		prefix := "├──"
		if i == len(s.exporters)-1 {
			prefix = "└──"
		}
		fmt.Fprintf(w, "   %s ✅ %s: %s\n", prefix, e.Signal, e.Target)
	}
	fmt.Fprintf(w, "\n")

	log.Debug("startup summary", logger.Fields(
		logger.FieldRuntime, s.runtimeID,
		"startup", s.startupDuration.String(),
		"exporters", len(s.exporters),
	))
}
