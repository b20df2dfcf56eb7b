// Package defaults provides the bot's built-in administrative and
// informational commands.
package defaults

import (
	"fmt"
	"strings"

	"github.com/quailbot/quail/bot"
)

// New builds the default module.
func New() *bot.Module {
	return bot.NewModule("default").
		Command("join", "<channel>",
			"Have the bot join the given channel.",
			bot.AuthAdmin, bot.CommandHandlerFunc(join)).
		Command("part", "[<channel>] [<message>]",
			"Have the bot part from the given channel (defaults to the current channel), with an optional part message.",
			bot.AuthAdmin, bot.CommandHandlerFunc(part)).
		Command("quit", "[<message>]",
			"Have the bot quit.",
			bot.AuthAdmin, bot.CommandHandlerFunc(quit)).
		Command("ping", "",
			"Request a short message from the bot, typically for testing purposes.",
			bot.AuthPublic, bot.CommandHandlerFunc(ping)).
		Command("source", "",
			"Request information about the bot, such as the URL of a Web page about its software.",
			bot.AuthPublic, bot.CommandHandlerFunc(source)).
		Command("help", "[<command>|list <name>]",
			"Request help with the bot's features, such as commands.",
			bot.AuthPublic, bot.CommandHandlerFunc(help)).
		MustBuild()
}

func join(_ *bot.Context, arg string) bot.BotCmdResult {
	if arg == "" {
		return bot.ArgMissing{Arg: "channel"}
	}
	if strings.ContainsAny(arg, " \t") {
		return bot.SyntaxErr{}
	}
	return bot.CmdOK{Reaction: bot.RawMsg{Raw: "JOIN " + arg}}
}

func isChannelName(s string) bool {
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "&")
}

func part(ctx *bot.Context, arg string) bot.BotCmdResult {
	channel, message := "", ""
	if first, rest, _ := strings.Cut(arg, " "); isChannelName(first) {
		channel, message = first, strings.TrimSpace(rest)
	} else {
		message = arg
	}

	if channel == "" {
		nick, err := ctx.State.Nick(ctx.Metadata.Dest.ServerID)
		if err != nil {
			return bot.LibErr{Err: err}
		}
		if ctx.Metadata.Dest.Target == nick {
			return bot.ArgMissing1To1{Arg: "channel"}
		}
		channel = ctx.Metadata.Dest.Target
	}

	raw := "PART " + channel
	if message != "" {
		raw += " :" + message
	}
	return bot.CmdOK{Reaction: bot.RawMsg{Raw: raw}}
}

func quit(_ *bot.Context, arg string) bot.BotCmdResult {
	return bot.CmdOK{Reaction: bot.Quit{Message: arg}}
}

func ping(_ *bot.Context, arg string) bot.BotCmdResult {
	if arg != "" {
		return bot.SyntaxErr{}
	}
	return bot.CmdOK{Reaction: bot.Reply{Text: "pong"}}
}

func source(_ *bot.Context, arg string) bot.BotCmdResult {
	if arg != "" {
		return bot.SyntaxErr{}
	}
	return bot.CmdOK{Reaction: bot.Reply{Text: fmt.Sprintf("<%s>", bot.ProjectHomepage)}}
}

var helpLists = []string{"commands", "lists"}

func help(ctx *bot.Context, arg string) bot.BotCmdResult {
	switch {
	case arg == "":
		return bot.CmdOK{Reaction: bot.Msgs{Texts: []string{
			"For help with a command named 'foo', try `help foo`.",
			"To see a list of all available commands, try `help list commands`.",
			fmt.Sprintf("For this bot software's documentation, see <%s>.", bot.ProjectHomepage),
		}}}
	case strings.HasPrefix(arg, "list "):
		return helpList(ctx, strings.TrimSpace(strings.TrimPrefix(arg, "list ")))
	case strings.ContainsAny(arg, " \t"):
		return bot.SyntaxErr{}
	default:
		return helpCommand(ctx, arg)
	}
}

func helpCommand(ctx *bot.Context, name string) bot.BotCmdResult {
	cmd, ok := ctx.State.Command(name)
	if !ok {
		return bot.CmdOK{Reaction: bot.Msg{Text: fmt.Sprintf("Command %q not found.", name)}}
	}
	return bot.CmdOK{Reaction: bot.Msgs{Texts: []string{
		fmt.Sprintf("= Help for command %q:", cmd.Name),
		fmt.Sprintf("- [module %q, auth level %s]", cmd.Provider.Name(), cmd.AuthLevel),
		fmt.Sprintf("- Syntax: %s %s", cmd.Name, cmd.Usage),
		cmd.Help,
	}}}
}

func helpList(ctx *bot.Context, name string) bot.BotCmdResult {
	switch name {
	case "commands":
		return bot.CmdOK{Reaction: bot.Msg{Text: fmt.Sprintf(
			"Available commands: %s", strings.Join(ctx.State.CommandNames(), ", "))}}
	case "lists":
		return bot.CmdOK{Reaction: bot.Msg{Text: fmt.Sprintf(
			"Available lists: %s", strings.Join(helpLists, ", "))}}
	default:
		return bot.CmdOK{Reaction: bot.Msg{Text: fmt.Sprintf(
			"List %q not found. Available lists: %s", name, strings.Join(helpLists, ", "))}}
	}
}
