package model

import (
	"fmt"
	"strings"
	"time"
)

// PrefixDateFormat is the layout of the calendar date embedded as the last
// path segment of a rule prefix. Registration writes this format, pruning
// parses it back out.
const PrefixDateFormat = "02.01.2006"

// RuleStatusEnabled is the only status this service ever writes.
const RuleStatusEnabled = "Enabled"

// ExpirationRule is one store side expiration policy, scoping all objects
// under Prefix to be removed Days days after creation.
type ExpirationRule struct {
	ID     string `yaml:"id" json:"id"`
	Prefix string `yaml:"prefix" json:"prefix"`
	Status string `yaml:"status" json:"status"`
	Days   int    `yaml:"days" json:"days"`
}

// RuleSet is the whole lifecycle configuration of the bucket. The store has
// no partial update, every mutation replaces the full set.
type RuleSet []ExpirationRule

// PrefixDate parses the calendar date embedded as the final path segment of
// the rule prefix.
func (r ExpirationRule) PrefixDate() (time.Time, error) {
	seg := r.Prefix
	if idx := strings.LastIndex(seg, "/"); idx >= 0 {
		seg = seg[idx+1:]
	}
	d, err := time.Parse(PrefixDateFormat, seg)
	if err != nil {
		return time.Time{}, fmt.Errorf("rule %s: prefix %q has no parsable date suffix: %w", r.ID, r.Prefix, err)
	}
	return d, nil
}

// ExpiryDate returns the first day on which the rule is no longer valid,
// the prefix date plus the expiration days plus one.
func (r ExpirationRule) ExpiryDate() (time.Time, error) {
	d, err := r.PrefixDate()
	if err != nil {
		return time.Time{}, err
	}
	return d.AddDate(0, 0, r.Days+1), nil
}

// ValidOn reports whether the rule is still valid on the given day. A rule
// is valid as long as its expiry date is strictly after today.
func (r ExpirationRule) ValidOn(today time.Time) (bool, error) {
	expiry, err := r.ExpiryDate()
	if err != nil {
		return false, err
	}
	return expiry.After(DateOnly(today)), nil
}

// DateOnly strips the time of day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
