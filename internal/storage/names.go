package storage

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/rachadinha/internal/models"
)

// SessionName returns the trimmed name, or the default name when it is empty.
func SessionName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.DefaultSessionName
	}
	return name
}

// CleanNames trims names and drops empty entries and repeats, keeping order.
func CleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// NewInviteCode returns the random secret that lets guests join a session.
func NewInviteCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
