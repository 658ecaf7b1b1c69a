package chat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fallback is one canned no-result reply, selected when any of its keywords
// appears in the question.
type Fallback struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// FallbackSet holds the canned replies in priority order plus the generic
// reply used when no intent matches.
type FallbackSet struct {
	Fallbacks []Fallback `yaml:"fallbacks"`
	Generic   string     `yaml:"generic"`
}

// For returns the canned reply for a question: the first intent whose
// keyword appears in the lowercased question, else the generic reply.
func (s *FallbackSet) For(question string) string {
	lower := strings.ToLower(question)
	for _, f := range s.Fallbacks {
		for _, kw := range f.Keywords {
			if strings.Contains(lower, kw) {
				return f.Reply
			}
		}
	}
	return s.Generic
}

// LoadFallbacks reads a fallback set from a YAML file. An empty path returns
// the compiled-in defaults.
func LoadFallbacks(path string) (*FallbackSet, error) {
	if path == "" {
		return DefaultFallbacks(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback config: %w", err)
	}
	var set FallbackSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse fallback config: %w", err)
	}
	if set.Generic == "" || len(set.Fallbacks) == 0 {
		return nil, fmt.Errorf("fallback config %s: needs at least one fallback and a generic reply", path)
	}
	return &set, nil
}

// DefaultFallbacks returns the built-in no-result replies.
func DefaultFallbacks() *FallbackSet {
	return &FallbackSet{
		Fallbacks: []Fallback{
			{
				Intent:   "earning",
				Keywords: []string{"earn", "coin", "money", "profit", "income"},
				Reply:    "I couldn't find a page on that yet. For earning, most players start with farming cycles and daily task boards — check the Earning section of the wiki for current strategies.",
			},
			{
				Intent:   "locations",
				Keywords: []string{"where", "location", "find", "map"},
				Reply:    "I couldn't find a page on that yet. Try the Locations section of the wiki — it maps out every area and what you can do there.",
			},
			{
				Intent:   "getting-started",
				Keywords: []string{"start", "begin", "new player", "tutorial", "how do i play"},
				Reply:    "I couldn't find a page on that yet. If you're new, the Getting Started guide walks through your first day step by step.",
			},
			{
				Intent:   "vip",
				Keywords: []string{"vip", "membership", "subscription", "premium"},
				Reply:    "I couldn't find a page on that yet. VIP perks and pricing change over time — the VIP section of the wiki keeps the current details.",
			},
		},
		Generic: "I couldn't find a page about that. Try rephrasing your question, or browse the wiki categories — new AMA recaps and guides are added every week.",
	}
}
