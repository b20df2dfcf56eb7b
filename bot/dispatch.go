package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/lrstanley/girc"
)

// updateMsgPrefixSentinel is the application-level sentinel the bot sends to
// itself to read back how the server renders its sender prefix. Receiving
// the echo refreshes the cached prefix used for line-length budgeting.
const updateMsgPrefixSentinel = "!!! UPDATE MESSAGE PREFIX !!!"

// botCmdMaxDepth bounds how many times a BotCmd reaction may re-enter
// command resolution.
const botCmdMaxDepth = 1

// handleMessage is the per-message state machine: Received -> Parsed ->
// {empty => immediate reply | prefix-refresh sentinel => update cache |
// otherwise => dispatch worker}.
func (b *Bot) handleMessage(serverID ServerID, ev *girc.Event) {
	if ev == nil {
		return
	}

	switch ev.Command {
	case girc.PRIVMSG:
		b.handlePrivmsg(serverID, ev)
	case girc.RPL_MYINFO:
		// The server has finished sending the protocol-mandated welcome
		// messages; ask it how it renders our prefix.
		b.pushToOutbox(serverID, b.mkPrefixUpdateRequest(serverID))
	case girc.PING:
		b.pushToOutbox(serverID, rawReaction(&girc.Event{
			Command: girc.PONG,
			Params:  ev.Params,
		}))
	}
}

func (b *Bot) handlePrivmsg(serverID ServerID, ev *girc.Event) {
	if len(ev.Params) < 2 {
		return
	}
	target, text := ev.Params[0], ev.Last()

	nick, err := b.state.Nick(serverID)
	if err != nil {
		slog.Warn("dropping message: own nickname unknown", "server", serverID, "error", err)
		return
	}

	cmdLine, addressed := parseMsgToNick(text, target, nick)
	if !addressed {
		return
	}

	prefix := prefixFromSource(ev.Source)
	metadata := MsgMetadata{
		Dest:   MsgDest{ServerID: serverID, Target: target},
		Prefix: prefix,
	}

	switch {
	case cmdLine == "":
		b.resolveAndPush(metadata, Reply{Text: "Yes?"})
	case prefix.Nick == target && strings.TrimSpace(text) == updateMsgPrefixSentinel:
		slog.Debug("updating stored message prefix", "server", serverID, "prefix", prefix)
		b.state.updateOwnPrefix(serverID, prefix)
	default:
		// The handler could take a while or panic, so run it on its own
		// worker. Both the state and the outbox are cheap shared handles.
		b.dispatchWG.Add(1)
		go func() {
			defer b.dispatchWG.Done()
			reaction := b.dispatch(metadata, cmdLine, 0)
			b.resolveAndPush(metadata, reaction)
		}()
	}
}

// dispatch resolves one command line: a registered command if the keyword
// matches, otherwise any matching trigger, otherwise an apology. The result
// is mapped to a user-facing Reaction; depth bounds BotCmd re-entry.
func (b *Bot) dispatch(metadata MsgMetadata, cmdLine string, depth int) Reaction {
	name, arg := splitCmdLine(cmdLine)

	var (
		result  BotCmdResult
		cmd     *BotCommand
		matched bool
	)
	if cmd, matched = b.state.Command(name); matched {
		result = b.state.runCommand(cmd, metadata, arg)
	} else if result, matched = b.state.runAnyMatching(cmdLine, metadata); !matched {
		return Reply{Text: fmt.Sprintf("Unknown command %q; apologies.", name)}
	}

	reaction := resultToReaction(cmd, name, result)

	if botCmd, ok := reaction.(BotCmd); ok {
		if depth >= botCmdMaxDepth {
			return Reply{Text: "Internal error: a bot-command reaction tried to nest beyond the supported depth."}
		}
		return b.dispatch(metadata, botCmd.Line, depth+1)
	}

	return reaction
}

// splitCmdLine cuts the command keyword off at the first whitespace of any
// kind; the rest is the raw argument text.
func splitCmdLine(cmdLine string) (name, arg string) {
	i := strings.IndexFunc(cmdLine, unicode.IsSpace)
	if i < 0 {
		return cmdLine, ""
	}
	return cmdLine[:i], strings.TrimSpace(cmdLine[i:])
}

// resultToReaction converts a handler's result into the Reaction the user
// sees. cmd may be nil when the result came from a trigger.
func resultToReaction(cmd *BotCommand, name string, result BotCmdResult) Reaction {
	usage := ""
	if cmd != nil {
		usage = cmd.Usage
	}

	switch r := result.(type) {
	case CmdOK:
		return r.Reaction
	case Unauthorized:
		return Reply{Text: fmt.Sprintf(
			"My apologies, but you do not appear to have sufficient authority to use my %q command.",
			name)}
	case ParamUnauthorized:
		return Reply{Text: fmt.Sprintf(
			"My apologies, but you do not appear to have sufficient authority to use the %q parameter of my %q command.",
			r.Param, name)}
	case SyntaxErr:
		return Reply{Text: fmt.Sprintf("Syntax: %s %s", name, usage)}
	case ArgMissing:
		return Reply{Text: fmt.Sprintf(
			"Syntax error: For command %q, the argument %q is required, but it was not given.",
			name, r.Arg)}
	case ArgMissing1To1:
		return Reply{Text: fmt.Sprintf(
			"Syntax error: When command %q is used outside of a channel, the argument %q is required, but it was not given.",
			name, r.Arg)}
	case LibErr:
		return Reply{Text: fmt.Sprintf("Error: %s", r.Err)}
	case UserErrMsg:
		return Reply{Text: fmt.Sprintf("User error: %s", r.Text)}
	case BotErrMsg:
		return Reply{Text: fmt.Sprintf("Internal error: %s", r.Text)}
	case nil:
		return NoReaction{}
	default:
		return Reply{Text: fmt.Sprintf("Internal error: unsupported handler result type %T.", result)}
	}
}

// resolveAndPush converts a Reaction to wire output and enqueues it. A
// resolution failure is reported to the original target instead of being
// dropped silently.
func (b *Bot) resolveAndPush(metadata MsgMetadata, reaction Reaction) {
	lr, ok, err := b.state.resolveReaction(metadata, reaction)
	if err != nil {
		slog.Error("failed to resolve reaction", "target", metadata.Dest.Target, "error", err)
		lr = rawReaction(&girc.Event{
			Command: girc.PRIVMSG,
			Params: []string{
				metadata.Dest.Target,
				fmt.Sprintf("Encountered error while trying to handle command: %s", err),
			},
		})
		ok = true
	}
	if !ok {
		return
	}
	b.pushToOutbox(metadata.Dest.ServerID, lr)
}

func (b *Bot) mkPrefixUpdateRequest(serverID ServerID) LibReaction {
	nick, err := b.state.Nick(serverID)
	if err != nil {
		slog.Warn("cannot request prefix update: own nickname unknown", "server", serverID)
		return LibReaction{}
	}
	return rawReaction(&girc.Event{
		Command: girc.PRIVMSG,
		Params:  []string{nick, updateMsgPrefixSentinel},
	})
}
