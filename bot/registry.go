package bot

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// LoadMode controls how module loading treats name collisions.
type LoadMode int

const (
	// LoadAdd emits an error if any of the new module's features conflict
	// with already present modules' features.
	LoadAdd LoadMode = iota

	// LoadReplace overwrites an already loaded feature that conflicts with
	// the new module's features only if the old feature was provided by a
	// module with the same name as the new module.
	LoadReplace

	// LoadForce overwrites old modules' features unconditionally.
	LoadForce
)

func (m LoadMode) String() string {
	switch m {
	case LoadAdd:
		return "add"
	case LoadReplace:
		return "replace"
	case LoadForce:
		return "force"
	default:
		return "unknown"
	}
}

// LoadModules loads each module in order, accumulating the errors of every
// failed load rather than stopping at the first.
func (s *State) LoadModules(modules []*Module, mode LoadMode) []error {
	var errs []error
	for _, m := range modules {
		errs = append(errs, s.LoadModule(m, mode)...)
	}
	return errs
}

// LoadModule registers a module and its features per the given mode, then
// runs the module's on-load callbacks in order.
//
// Features registered before a later clash or a failed on-load callback are
// not rolled back; the partially loaded module stays in the registry. This
// mirrors the loading behavior operators rely on for replace-style reloads.
//
// The callbacks run after the registry lock has been released, so they are
// free to use the registry themselves (look commands up, or even load
// further modules).
func (s *State) LoadModule(module *Module, mode LoadMode) []error {
	if errs := s.registerModule(module, mode); len(errs) > 0 {
		return errs
	}

	for _, fn := range module.onLoad {
		if err := fn(s); err != nil {
			return []error{fmt.Errorf("on-load callback of module %q: %w", module.Name(), err)}
		}
	}

	return nil
}

func (s *State) registerModule(module *Module, mode LoadMode) []error {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	slog.Debug("loading module",
		"module", module.Name(), "mode", mode.String(), "features", len(module.features))

	if old, present := s.modules[module.Name()]; present && mode == LoadAdd {
		return []error{&ModuleRegistryClashError{Old: old.info(), New: module.info()}}
	}

	s.modules[module.Name()] = module

	var errs []error
	for _, f := range module.features {
		if err := s.loadFeature(module, f, mode); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *State) loadFeature(provider *Module, f feature, mode LoadMode) error {
	slog.Debug("loading module feature", "feature", f.featureName(), "kind", f.featureKind())

	if old := s.clashingFeature(provider, f, mode); old != nil {
		return &FeatureRegistryClashError{Old: *old, New: featureInfo(f)}
	}

	s.forceLoadFeature(provider, f)
	return nil
}

// clashingFeature returns information about an existing feature that blocks
// loading f under the given mode, or nil if f may be registered.
func (s *State) clashingFeature(provider *Module, f feature, mode LoadMode) *FeatureInfo {
	if mode == LoadForce {
		return nil
	}

	switch f := f.(type) {
	case *commandFeature:
		old, present := s.commands[f.name]
		if !present {
			return nil
		}
		if mode == LoadReplace && old.Provider.Name() == provider.Name() {
			return nil
		}
		info := old.info()
		return &info
	case *triggerFeature:
		old := s.findTrigger(f.name)
		if old == nil {
			return nil
		}
		if mode == LoadReplace && old.Provider.Name() == provider.Name() {
			return nil
		}
		info := old.info()
		return &info
	default:
		return nil
	}
}

func (s *State) forceLoadFeature(provider *Module, f feature) {
	switch f := f.(type) {
	case *commandFeature:
		s.commands[f.name] = &BotCommand{
			Name:      f.name,
			Provider:  provider,
			AuthLevel: f.authLevel,
			Usage:     f.usage,
			Help:      f.help,
			handler:   f.handler,
		}
	case *triggerFeature:
		s.removeTrigger(f.name)
		s.triggers[f.priority] = append(s.triggers[f.priority], &Trigger{
			Name:     f.name,
			Provider: provider,
			Priority: f.priority,
			Help:     f.help,
			id:       uuid.New(),
			handler:  f.handler,
			pattern:  f.pattern,
		})
	}
}

// findTrigger looks a trigger up by name across all priority buckets.
// Callers must hold regMu.
func (s *State) findTrigger(name string) *Trigger {
	for _, bucket := range s.triggers {
		for _, t := range bucket {
			if t.Name == name {
				return t
			}
		}
	}
	return nil
}

// removeTrigger drops any trigger with the given name, in whichever bucket
// it lives. Callers must hold regMu.
func (s *State) removeTrigger(name string) {
	for pri, bucket := range s.triggers {
		kept := bucket[:0]
		for _, t := range bucket {
			if t.Name != name {
				kept = append(kept, t)
			}
		}
		s.triggers[pri] = kept
	}
}
