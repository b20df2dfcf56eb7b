package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Module is a named, loadable bundle of commands, triggers, and on-load
// callbacks. Modules are built once (typically at startup) and shared
// read-only by every registry entry that references them.
type Module struct {
	name     string
	id       uuid.UUID
	features []feature
	onLoad   []LoadHandler
}

// Name returns the module's registry name.
func (m *Module) Name() string {
	return m.name
}

// ID returns the module's process-unique identifier. Two same-named modules
// from different builds (e.g. across a reload) have distinct IDs.
func (m *Module) ID() uuid.UUID {
	return m.id
}

func (m *Module) info() ModuleInfo {
	return ModuleInfo{Name: m.name}
}

const (
	featureKindCommand = "command"
	featureKindTrigger = "trigger"
)

type feature interface {
	featureName() string
	featureKind() string
}

func featureInfo(f feature) FeatureInfo {
	return FeatureInfo{Name: f.featureName(), Kind: f.featureKind()}
}

type commandFeature struct {
	name      string
	usage     string
	help      string
	authLevel AuthLevel
	handler   CommandHandler
}

func (f *commandFeature) featureName() string { return f.name }
func (f *commandFeature) featureKind() string { return featureKindCommand }

type triggerFeature struct {
	name     string
	pattern  *regexp.Regexp
	help     string
	priority TriggerPriority
	handler  TriggerHandler
}

func (f *triggerFeature) featureName() string { return f.name }
func (f *triggerFeature) featureKind() string { return featureKindTrigger }

// ModuleBuilder assembles a Module. Declaration errors (such as a command
// name containing whitespace or an invalid trigger pattern) are accumulated
// and reported by Build, so a faulty module is rejected as a whole rather
// than silently truncated.
type ModuleBuilder struct {
	name     string
	features []feature
	onLoad   []LoadHandler
	errs     []error
}

// NewModule starts building a module with the given registry name.
func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// Command declares an explicitly invoked feature. The name is the keyword
// users type; usage is an opaque syntax hint surfaced in syntax-error
// replies; help is shown by help-style commands.
func (b *ModuleBuilder) Command(name, usage, help string, authLevel AuthLevel, handler CommandHandler) *ModuleBuilder {
	if strings.ContainsFunc(name, unicode.IsSpace) {
		b.errs = append(b.errs, fmt.Errorf(
			"the name of the bot command %q contains whitespace, which is not allowed", name))
		return b
	}
	if handler == nil {
		b.errs = append(b.errs, fmt.Errorf("the bot command %q has no handler", name))
		return b
	}
	b.features = append(b.features, &commandFeature{
		name:      name,
		usage:     usage,
		help:      help,
		authLevel: authLevel,
		handler:   handler,
	})
	return b
}

// Trigger declares a pattern-matched feature. The pattern is compiled here;
// it can be hot-swapped later via Trigger.SetPattern without reloading the
// module.
func (b *ModuleBuilder) Trigger(name, pattern, help string, priority TriggerPriority, handler TriggerHandler) *ModuleBuilder {
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("the trigger %q has an invalid pattern: %w", name, err))
		return b
	}
	if handler == nil {
		b.errs = append(b.errs, fmt.Errorf("the trigger %q has no handler", name))
		return b
	}
	b.features = append(b.features, &triggerFeature{
		name:     name,
		pattern:  re,
		help:     help,
		priority: priority,
		handler:  handler,
	})
	return b
}

// OnLoad registers a callback to run when the module is loaded, after its
// features have been registered.
func (b *ModuleBuilder) OnLoad(fn LoadHandler) *ModuleBuilder {
	b.onLoad = append(b.onLoad, fn)
	return b
}

// Build finalizes the module, or reports every declaration error found.
func (b *ModuleBuilder) Build() (*Module, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("building module %q: %w", b.name, errors.Join(b.errs...))
	}
	return &Module{
		name:     b.name,
		id:       uuid.New(),
		features: b.features,
		onLoad:   b.onLoad,
	}, nil
}

// MustBuild is Build for modules declared statically at startup, where a
// declaration error is a programming bug.
func (b *ModuleBuilder) MustBuild() *Module {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
