package bot

import (
	"fmt"
	"log/slog"
)

// AuthLevel is the authorization a command demands of its invoker.
type AuthLevel int

const (
	// AuthPublic commands may be invoked by anyone.
	AuthPublic AuthLevel = iota

	// AuthAdmin commands may only be invoked by a configured owner/admin.
	// This is the maximum level; only commands declared at it may produce a
	// Quit reaction.
	AuthAdmin
)

func (l AuthLevel) String() string {
	switch l {
	case AuthPublic:
		return "public"
	case AuthAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// BotCommand is a materialized registry entry for one command feature.
type BotCommand struct {
	Name      string
	Provider  *Module
	AuthLevel AuthLevel
	Usage     string
	Help      string

	handler CommandHandler
}

func (c *BotCommand) info() FeatureInfo {
	return FeatureInfo{Name: c.Name, Kind: featureKindCommand}
}

// BotCmdResult is what a command or trigger handler reports back to the
// framework.
type BotCmdResult interface {
	isBotCmdResult()
}

// CmdOK passes a Reaction through: the command was processed successfully.
type CmdOK struct {
	Reaction Reaction
}

// Unauthorized reports that the invoker lacked the authority to use the
// command. The user is told so in a reply naming the command.
type Unauthorized struct{}

// ParamUnauthorized reports that the invoker lacked the authority to use one
// particular parameter of the command.
type ParamUnauthorized struct {
	Param string
}

// SyntaxErr reports that the command was invoked with incorrect syntax. The
// user is replied to with the command's usage string.
type SyntaxErr struct{}

// ArgMissing reports that a required argument was not given. Prefer this
// over SyntaxErr where applicable.
type ArgMissing struct {
	Arg string
}

// ArgMissing1To1 reports that an argument required only in one-to-one
// communication (such as a channel name, which would otherwise default to
// the current channel) was not given.
type ArgMissing1To1 struct {
	Arg string
}

// LibErr passes a framework-level error through.
type LibErr struct {
	Err error
}

// UserErrMsg reports a miscellaneous error on the user's part.
type UserErrMsg struct {
	Text string
}

// BotErrMsg reports a miscellaneous error that doesn't seem to be the user's
// fault.
type BotErrMsg struct {
	Text string
}

func (CmdOK) isBotCmdResult()             {}
func (Unauthorized) isBotCmdResult()      {}
func (ParamUnauthorized) isBotCmdResult() {}
func (SyntaxErr) isBotCmdResult()         {}
func (ArgMissing) isBotCmdResult()        {}
func (ArgMissing1To1) isBotCmdResult()    {}
func (LibErr) isBotCmdResult()            {}
func (UserErrMsg) isBotCmdResult()        {}
func (BotErrMsg) isBotCmdResult()         {}

// runCommand evaluates authorization, invokes the handler under panic
// isolation, and applies the central Quit gate.
func (s *State) runCommand(cmd *BotCommand, metadata MsgMetadata, arg string) BotCmdResult {
	authorized := true
	if cmd.AuthLevel == AuthAdmin {
		authorized = s.HaveAdmin(metadata.Prefix)
	}
	if !authorized {
		return Unauthorized{}
	}

	slog.Debug("running bot command", "command", cmd.Name, "arg", arg)

	ctx := &Context{State: s, Metadata: metadata}
	result, err := runHandler(featureKindCommand, cmd.Name, func() BotCmdResult {
		return cmd.handler.Invoke(ctx, arg)
	})
	if err != nil {
		slog.Error("bot command handler failed", "command", cmd.Name, "error", err)
		result = LibErr{Err: err}
	}

	return s.gateQuit(cmd, result)
}

// gateQuit refuses a Quit reaction from any command below the maximum
// authorization level, so quitting is always traceable to a properly
// privileged command, regardless of which handler produced the reaction.
func (s *State) gateQuit(cmd *BotCommand, result BotCmdResult) BotCmdResult {
	ok, isOK := result.(CmdOK)
	if !isOK {
		return result
	}
	quit, isQuit := ok.Reaction.(Quit)
	if !isQuit || cmd.AuthLevel == AuthAdmin {
		return result
	}
	return BotErrMsg{Text: formatQuitRefusal(cmd, quit.Message)}
}

func formatQuitRefusal(cmd *BotCommand, quitMsg string) string {
	return fmt.Sprintf("Only commands at authorization level %s may tell the bot to quit, "+
		"but the command %q from module %q, at authorization level %s, has told the bot "+
		"to quit with quit message %q.",
		AuthAdmin, cmd.Name, cmd.Provider.Name(), cmd.AuthLevel, quitMsg)
}
