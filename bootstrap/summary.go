package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/dataflow/component"
)

// ChannelInfo describes a destination channel attached to the task.
type ChannelInfo struct {
	Name    string
	Backend string // "file", "table", "kafka", "redis"
	Kind    string // "direct", "sorted", "unordered"
	Target  string
}

// Summary tracks and displays the task startup.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	channels        []ChannelInfo
}

// NewSummary creates a startup summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackChannel records a channel the task writes to.
func (s *Summary) TrackChannel(name, backend, kind, target string) {
	s.channels = append(s.channels, ChannelInfo{
		Name:    name,
		Backend: backend,
		Kind:    kind,
		Target:  target,
	})
}

// Channels returns the tracked channels in registration order.
func (s *Summary) Channels() []ChannelInfo {
	return append([]ChannelInfo(nil), s.channels...)
}

// Display writes the summary to w, including the configuration and live
// health of every component in registry.
func (s *Summary) Display(ctx context.Context, w io.Writer, registry *component.Registry) {
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s ready in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	var components []component.Component
	if registry != nil {
		components = registry.All()
	}
	if len(components) > 0 {
		fmt.Fprintf(w, "\nBackends\n")
		for i, c := range components {
			desc := component.DescribeOf(c)
			h := c.Health(ctx)
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s [%s] %s%s\n",
				treePrefix(i, len(components)), healthStatusIcon(h.Status), desc.Name, desc.Type, desc.Details, msg)
		}
	}

	if len(s.channels) > 0 {
		fmt.Fprintf(w, "\nChannels (%d)\n", len(s.channels))
		for i, ch := range s.channels {
			fmt.Fprintf(w, "   %s %s (%s, %s) -> %s\n",
				treePrefix(i, len(s.channels)), ch.Name, ch.Backend, strings.ToLower(ch.Kind), ch.Target)
		}
	} else {
		fmt.Fprintf(w, "   └── No channels attached\n")
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
