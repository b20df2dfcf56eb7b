package bot

import (
	"errors"
	"fmt"
)

// ErrNicknameUnknown is returned when the bot is asked for its own nickname
// on a server for which no prefix information is available at all.
var ErrNicknameUnknown = errors.New("the bot seems to have forgotten its own nickname")

// ModuleInfo describes a module for error reporting.
type ModuleInfo struct {
	Name string
}

// FeatureInfo describes a module feature for error reporting.
type FeatureInfo struct {
	Name string
	Kind string
}

// ModuleRegistryClashError is returned when loading a module whose name is
// already taken by a different module.
type ModuleRegistryClashError struct {
	Old ModuleInfo
	New ModuleInfo
}

func (e *ModuleRegistryClashError) Error() string {
	return fmt.Sprintf("module registry clash: a module named %q is already loaded", e.Old.Name)
}

// FeatureRegistryClashError is returned when a module feature's name is
// already taken and the load mode does not permit overwriting it.
type FeatureRegistryClashError struct {
	Old FeatureInfo
	New FeatureInfo
}

func (e *FeatureRegistryClashError) Error() string {
	return fmt.Sprintf("feature registry clash: %s %q is already provided and may not be overwritten by %s %q",
		e.Old.Kind, e.Old.Name, e.New.Kind, e.New.Name)
}

// HandlerPanicError reports that a module's handler panicked. The panic is
// caught at the handler invocation boundary and never unwinds further.
type HandlerPanicError struct {
	FeatureKind string
	FeatureName string
	Value       any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler panic: the handler of the %s feature %q panicked: %v",
		e.FeatureKind, e.FeatureName, e.Value)
}

// UnknownServerError reports a lookup for a server that is not registered.
type UnknownServerError struct {
	ServerID ServerID
}

func (e *UnknownServerError) Error() string {
	return fmt.Sprintf("unknown server: no connection is registered under the ID %s", e.ServerID)
}
