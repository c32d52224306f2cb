package model

import "fmt"

// Kind identifies one of the served content categories.
type Kind string

const (
	KindTools Kind = "tools"
	KindCases Kind = "cases"
	KindNews  Kind = "news"
)

// ParseKind validates a raw kind string from a request path.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTools, KindCases, KindNews:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown content kind: %q", s)
}
