package bot

import (
	"regexp"
	"sync"

	"github.com/google/uuid"
)

// TriggerPriority is the discrete priority bucket a trigger is registered
// under. Buckets are scanned from PriorityMaximum down; once any trigger in
// a bucket matches, lower buckets are never consulted.
type TriggerPriority int

const (
	// PriorityMinimum designates the trigger as having minimum priority.
	PriorityMinimum TriggerPriority = iota

	// PriorityLow is appropriate for triggers intended primarily for
	// jocular or otherwise non-serious purposes.
	PriorityLow

	// PriorityMedium designates the trigger as having medium priority.
	PriorityMedium

	// PriorityHigh is appropriate for triggers that implement important
	// functionality of a particular bot.
	PriorityHigh

	// PriorityMaximum designates the trigger as having maximum priority.
	PriorityMaximum
)

func (p TriggerPriority) String() string {
	switch p {
	case PriorityMinimum:
		return "minimum"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityMaximum:
		return "maximum"
	default:
		return "unknown"
	}
}

// TriggerAttr is a reserved extension point for trigger attributes (such as
// triggering on messages not addressed to the bot). No attribute currently
// changes behavior.
type TriggerAttr int

const (
	// TriggerAlwaysWatching is declared but not yet implemented.
	TriggerAlwaysWatching TriggerAttr = iota
)

// Trigger is a materialized registry entry for one trigger feature. Its
// pattern is held behind a read-write lock so it can be hot-swapped without
// removing the trigger from the registry.
type Trigger struct {
	Name     string
	Provider *Module
	Priority TriggerPriority
	Help     string

	id      uuid.UUID
	handler TriggerHandler

	mu      sync.RWMutex
	pattern *regexp.Regexp
}

// ID returns the trigger's process-unique identifier.
func (t *Trigger) ID() uuid.UUID {
	return t.id
}

func (t *Trigger) info() FeatureInfo {
	return FeatureInfo{Name: t.Name, Kind: featureKindTrigger}
}

// Pattern returns the trigger's current regex.
func (t *Trigger) Pattern() *regexp.Regexp {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pattern
}

// SetPattern hot-swaps the trigger's regex. In-flight matches keep using the
// pattern they started with.
func (t *Trigger) SetPattern(re *regexp.Regexp) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pattern = re
}

func (t *Trigger) matches(text string) bool {
	return t.Pattern().MatchString(text)
}

// runAnyMatching scans priority buckets from highest to lowest and runs one
// uniformly randomly chosen matching trigger from the first bucket that
// yields any match. The boolean result is false if no trigger matched.
func (s *State) runAnyMatching(text string, metadata MsgMetadata) (BotCmdResult, bool) {
	trigger := s.pickTrigger(text)
	if trigger == nil {
		return nil, false
	}

	captures := trigger.Pattern().FindStringSubmatch(text)
	if captures == nil {
		// The pattern was swapped between selection and capture; treat it as
		// no longer matching.
		return nil, false
	}

	ctx := &Context{State: s, Metadata: metadata}
	result, err := runHandler(featureKindTrigger, trigger.Name, func() BotCmdResult {
		return trigger.handler.Invoke(ctx, captures)
	})
	if err != nil {
		return LibErr{Err: err}, true
	}
	return result, true
}

func (s *State) pickTrigger(text string) *Trigger {
	s.regMu.RLock()
	defer s.regMu.RUnlock()

	for pri := PriorityMaximum; pri >= PriorityMinimum; pri-- {
		bucket := s.triggers[pri]
		if len(bucket) == 0 {
			continue
		}

		var matching []*Trigger
		for _, t := range bucket {
			if t.matches(text) {
				matching = append(matching, t)
			}
		}
		if len(matching) == 0 {
			continue
		}

		// The shared RNG is acquired once per call, only for the selection.
		return matching[s.randIntn(len(matching))]
	}

	return nil
}
