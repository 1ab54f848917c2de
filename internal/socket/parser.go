package socket

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	typeRegex     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	terminalRegex = regexp.MustCompile(`^(Input|Output|Static)(\d{2,})$`)
)

// ParseNodeKey parses the canonical `<id>:<type>` form.
func ParseNodeKey(raw string) (NodeKey, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return NodeKey{}, fmt.Errorf("node key %q: want <id>:<type>", raw)
	}
	return parseNodeKey(parts[0], parts[1])
}

func parseNodeKey(rawID, rawType string) (NodeKey, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 0 {
		return NodeKey{}, fmt.Errorf("invalid node id %q", rawID)
	}
	if !typeRegex.MatchString(rawType) {
		return NodeKey{}, fmt.Errorf("invalid node type %q", rawType)
	}
	return NodeKey{ID: id, Type: rawType}, nil
}

// Parse creates an ID from its canonical string representation.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return ID{}, fmt.Errorf("socket identifier cannot be empty")
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return ID{}, fmt.Errorf("socket identifier %q: want 4 segments, got %d", raw, len(parts))
	}

	key, err := parseNodeKey(parts[0], parts[1])
	if err != nil {
		return ID{}, fmt.Errorf("socket identifier %q: %w", raw, err)
	}

	kind, err := ParseKind(parts[2])
	if err != nil {
		return ID{}, fmt.Errorf("socket identifier %q: %w", raw, err)
	}

	matches := terminalRegex.FindStringSubmatch(parts[3])
	if matches == nil {
		return ID{}, fmt.Errorf("socket identifier %q: invalid terminal %q", raw, parts[3])
	}
	role, err := ParseRole(matches[1])
	if err != nil {
		// Unreachable due to the regex alternation.
		return ID{}, fmt.Errorf("internal error parsing role: %w", err)
	}
	index, err := strconv.Atoi(matches[2])
	if err != nil {
		return ID{}, fmt.Errorf("socket identifier %q: invalid index: %w", raw, err)
	}

	return key.Socket(kind, role, index), nil
}
