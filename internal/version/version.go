// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - City clustering, flat map fallback, Prometheus metrics, koanf config
// 0.2.0 - Hover tooltips, click-to-fly, grid picker, star backdrop
// 0.1.0 - Initial release: terminal globe, demo directory, headless summary
