// Package featureflags evaluates FEATURE_FLAGS, a comma-separated list of
// name=value pairs such as "chat=on,suggestions=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags gating optional product surfaces.
const (
	FlagChat        = "chat"
	FlagSuggestions = "suggestions"
	FlagQuestions   = "questions"
)

// Product surfaces ship enabled; FEATURE_FLAGS can switch them off or roll them out.
var defaultOn = []string{FlagChat, FlagSuggestions, FlagQuestions}

// rule is a parsed flag value: the share of users, 0 to 100, that see the feature.
type rule struct {
	percent int
}

// Manager holds parsed flag rules. A nil Manager reports every flag off.
type Manager struct {
	rules      map[string]rule
	configured map[string]string
}

// NewManager parses raw on top of the product defaults. Malformed pairs are skipped.
// Values: on/true/1, off/false/0, or N% for a deterministic per-user rollout.
// Any other value turns the flag off.
func NewManager(raw string) *Manager {
	m := &Manager{
		rules:      make(map[string]rule, len(defaultOn)),
		configured: make(map[string]string),
	}
	for _, name := range defaultOn {
		m.rules[name] = rule{percent: 100}
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		m.configured[key] = value
		m.rules[key] = parseRule(value)
	}
	return m
}

func parseRule(value string) rule {
	switch value {
	case "on", "true", "1":
		return rule{percent: 100}
	case "off", "false", "0":
		return rule{}
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return rule{}
	}
	pct, err := strconv.Atoi(strings.TrimSpace(pctRaw))
	if err != nil {
		return rule{}
	}
	return rule{percent: min(max(pct, 0), 100)}
}

// Enabled reports whether name is on for userID. Partial rollouts need a
// signed-in user; anonymous callers only see fully enabled flags.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Raw returns a copy of the values set through FEATURE_FLAGS.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for k, v := range m.configured {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every known flag, configured or defaulted, for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	if m == nil {
		return out
	}
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
