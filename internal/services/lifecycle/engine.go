// Package lifecycle contains the rule engine maintaining the expiration
// rules on the object store. Rules map store path prefixes to day counts;
// the store only knows whole configuration read and write, so every
// mutation here is a read-modify-write over the entire rule set.
package lifecycle

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/willie68/GoBackupStore/internal/logging"
	"github.com/willie68/GoBackupStore/internal/services/objstore"
	"github.com/willie68/GoBackupStore/internal/utils"
	"github.com/willie68/GoBackupStore/pkg/model"
)

var logger = logging.New().WithName("lifecycle")

// RuleStore is the slice of the object store the engine operates on.
type RuleStore interface {
	GetRules(ctx context.Context) (model.RuleSet, error)
	ReplaceRules(ctx context.Context, rules model.RuleSet) error
	ClearRules(ctx context.Context) error
}

// Engine computes and maintains the expiration rule set.
type Engine struct {
	Store RuleStore
	// Now the clock source, defaults to time.Now
	Now func() time.Time
}

// NewEngine creates the engine on top of a rule store
func NewEngine(store RuleStore) *Engine {
	return &Engine{Store: store}
}

// RegisterPrefix appends a new enabled rule for the given prefix and day
// count to the existing rule set. A missing lifecycle configuration counts
// as an empty set. The append is additive, existing rules for the same
// prefix are kept untouched, so re-registering produces duplicates.
func (e *Engine) RegisterPrefix(ctx context.Context, prefix string, days int) error {
	rule := model.ExpirationRule{
		ID:     utils.GenerateID(),
		Prefix: prefix,
		Status: model.RuleStatusEnabled,
		Days:   days,
	}
	// fail fast on a prefix the prune pass could not parse back
	if _, err := rule.PrefixDate(); err != nil {
		return errors.Wrap(err, "registering prefix")
	}

	rules, err := e.Store.GetRules(ctx)
	if err != nil {
		if !errors.Is(err, objstore.ErrNoLifecycle) {
			return errors.Wrap(err, "registering prefix")
		}
		rules = model.RuleSet{}
	}
	rules = append(rules, rule)
	if err := e.Store.ReplaceRules(ctx, rules); err != nil {
		return errors.Wrap(err, "registering prefix")
	}
	logger.Infof("registered rule %s: %s expires after %d days", rule.ID, rule.Prefix, rule.Days)
	return nil
}

// PruneExpired drops all rules whose expiration window has already elapsed.
// If at least one rule survives the remaining set is written back, otherwise
// the whole lifecycle configuration is cleared. A rule with an unparsable
// prefix aborts the pass before anything is written, the prior rule set
// stays authoritative.
func (e *Engine) PruneExpired(ctx context.Context) error {
	rules, err := e.Store.GetRules(ctx)
	if err != nil {
		if errors.Is(err, objstore.ErrNoLifecycle) {
			logger.Info("no rules found")
			return nil
		}
		return errors.Wrap(err, "pruning rules")
	}

	today := e.now()
	valid := make(model.RuleSet, 0, len(rules))
	for _, rule := range rules {
		ok, err := rule.ValidOn(today)
		if err != nil {
			return errors.Wrap(err, "pruning rules")
		}
		if ok {
			valid = append(valid, rule)
		}
	}
	if len(valid) > 0 {
		if err := e.Store.ReplaceRules(ctx, valid); err != nil {
			return errors.Wrap(err, "pruning rules")
		}
		logger.Infof("pruned %d of %d rules", len(rules)-len(valid), len(rules))
		return nil
	}
	if err := e.Store.ClearRules(ctx); err != nil {
		return errors.Wrap(err, "pruning rules")
	}
	logger.Infof("pruned all %d rules, lifecycle configuration cleared", len(rules))
	return nil
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
