// Package filter provides include filtering for calendar events.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cpuguy83/dayplan/internal/calendar"
	"github.com/cpuguy83/dayplan/internal/config"
)

// MatchType specifies how a filter rule matches.
type MatchType int

const (
	MatchContains MatchType = iota // Substring match (default)
	MatchExact                     // Exact string match
	MatchPrefix                    // Starts with
	MatchSuffix                    // Ends with
	MatchRegex                     // Regular expression
)

// Filter applies include rules to events.
type Filter struct {
	mode  string // "or" or "and"
	rules []rule
}

type rule struct {
	field           string
	matchType       MatchType
	pattern         string         // For non-regex matches
	regex           *regexp.Regexp // For regex matches
	caseInsensitive bool
}

// New creates a new filter from configuration.
func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{
		mode: cfg.Mode,
	}

	if f.mode == "" {
		f.mode = "or"
	}

	for i, r := range cfg.Rules {
		compiled, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		f.rules = append(f.rules, compiled)
	}

	return f, nil
}

// compileRule converts a config FilterRule to an internal rule.
func compileRule(r config.FilterRule) (rule, error) {
	compiled := rule{
		field:           r.Field,
		caseInsensitive: r.CaseInsensitive,
	}

	switch {
	case r.Regex != "":
		compiled.matchType = MatchRegex
		pattern := r.Regex
		if r.CaseInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return compiled, fmt.Errorf("invalid regex %q: %w", r.Regex, err)
		}
		compiled.regex = re

	case r.Exact != "":
		compiled.matchType = MatchExact
		compiled.pattern = r.Exact

	case r.Prefix != "":
		compiled.matchType = MatchPrefix
		compiled.pattern = r.Prefix

	case r.Suffix != "":
		compiled.matchType = MatchSuffix
		compiled.pattern = r.Suffix

	case r.Contains != "":
		compiled.matchType = MatchContains
		compiled.pattern = r.Contains

	default:
		return compiled, fmt.Errorf("no match pattern specified (use contains, exact, prefix, suffix, or regex)")
	}

	if r.CaseInsensitive && compiled.matchType != MatchRegex {
		compiled.pattern = strings.ToLower(compiled.pattern)
	}

	return compiled, nil
}

// Apply filters events, returning only those that match the include rules.
// If no rules are defined, all events are returned.
func (f *Filter) Apply(events []calendar.CalendarEvent) []calendar.CalendarEvent {
	// No rules = pass everything through
	if len(f.rules) == 0 {
		return events
	}

	filtered := []calendar.CalendarEvent{}
	for _, event := range events {
		if f.matches(event) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// matches checks if an event matches the filter rules.
func (f *Filter) matches(event calendar.CalendarEvent) bool {
	if f.mode == "and" {
		// All rules must match
		for _, r := range f.rules {
			if !r.matches(event) {
				return false
			}
		}
		return true
	}

	// OR mode: any rule must match
	for _, r := range f.rules {
		if r.matches(event) {
			return true
		}
	}
	return false
}

// matches checks if an event matches a single rule. The category field
// matches when any of the event's category tags matches.
func (r *rule) matches(event calendar.CalendarEvent) bool {
	if r.field == "category" || r.field == "categories" {
		for _, c := range event.Categories {
			if r.matchValue(c) {
				return true
			}
		}
		return false
	}
	return r.matchValue(r.getFieldValue(event))
}

func (r *rule) matchValue(value string) bool {
	// Apply case insensitivity for non-regex matches
	if r.caseInsensitive && r.matchType != MatchRegex {
		value = strings.ToLower(value)
	}

	switch r.matchType {
	case MatchRegex:
		return r.regex.MatchString(value)
	case MatchExact:
		return value == r.pattern
	case MatchPrefix:
		return strings.HasPrefix(value, r.pattern)
	case MatchSuffix:
		return strings.HasSuffix(value, r.pattern)
	case MatchContains:
		fallthrough
	default:
		return strings.Contains(value, r.pattern)
	}
}

// getFieldValue extracts the field value from an event.
func (r *rule) getFieldValue(event calendar.CalendarEvent) string {
	switch r.field {
	case "subject", "title":
		return event.Subject
	case "organizer":
		return event.Organizer
	case "location":
		return event.Location
	default:
		return ""
	}
}
