package util

import (
	"os"
	"strings"
)

// IsRunningInDocker checks the marker file docker creates and falls back to
// the cgroup of pid 1 for runtimes that don't create it
func IsRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	b, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}

	s := string(b)
	return strings.Contains(s, "docker") || strings.Contains(s, "containerd")
}
