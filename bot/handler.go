package bot

// Context is handed to every command and trigger handler. It exposes the
// shared bot state (read-mostly: registry lookups, configuration, the bot's
// own identity) and the metadata of the message that caused the invocation.
type Context struct {
	// State is the shared bot state. Handlers may read from it freely; it is
	// mutated only through module loading.
	State *State

	// Metadata describes the message that caused this handler to run: who
	// sent it and where it was sent.
	Metadata MsgMetadata
}

// CommandHandler is the capability a command feature provides. Invoke
// receives the raw argument text following the command keyword.
//
// Handlers run on their own dispatch goroutine. A panicking handler is
// caught at the invocation boundary and reported as a handler fault; it
// never takes the process down.
type CommandHandler interface {
	Invoke(ctx *Context, arg string) BotCmdResult
}

// CommandHandlerFunc adapts a plain function to CommandHandler.
type CommandHandlerFunc func(ctx *Context, arg string) BotCmdResult

func (f CommandHandlerFunc) Invoke(ctx *Context, arg string) BotCmdResult {
	return f(ctx, arg)
}

// TriggerHandler is the capability a trigger feature provides. Invoke
// receives the capture groups of the trigger's own regex match against the
// message text; captures[0] is the full match.
type TriggerHandler interface {
	Invoke(ctx *Context, captures []string) BotCmdResult
}

// TriggerHandlerFunc adapts a plain function to TriggerHandler.
type TriggerHandlerFunc func(ctx *Context, captures []string) BotCmdResult

func (f TriggerHandlerFunc) Invoke(ctx *Context, captures []string) BotCmdResult {
	return f(ctx, captures)
}

// LoadHandler runs while its module is being loaded, after the module's
// features have been registered. It receives the registry it is being loaded
// into.
type LoadHandler func(s *State) error

// runHandler invokes fn with panic isolation. An abnormal termination is
// converted into a HandlerPanicError identifying the feature.
func runHandler(featureKind, featureName string, fn func() BotCmdResult) (result BotCmdResult, err error) {
	defer func() {
		if v := recover(); v != nil {
			result = nil
			err = &HandlerPanicError{
				FeatureKind: featureKind,
				FeatureName: featureName,
				Value:       v,
			}
		}
	}()
	return fn(), nil
}
