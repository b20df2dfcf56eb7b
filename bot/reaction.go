package bot

import (
	"fmt"

	"github.com/lrstanley/girc"
)

// Reaction is what a handler asks the framework to do in response to a
// message, before any target resolution or line wrapping has happened.
type Reaction interface {
	isReaction()
}

// NoReaction does nothing.
type NoReaction struct{}

// Msg sends one message to the inferred reply target, without addressing
// anyone in particular.
type Msg struct {
	Text string
}

// Msgs sends several messages to the inferred reply target.
type Msgs struct {
	Texts []string
}

// Reply sends one message addressed to whoever sent the original message.
type Reply struct {
	Text string
}

// Replies sends several messages addressed to whoever sent the original
// message.
type Replies struct {
	Texts []string
}

// RawMsg sends a raw protocol line verbatim, bypassing target resolution and
// line wrapping.
type RawMsg struct {
	Raw string
}

// BotCmd runs the given text as if it had been received as a bot command.
type BotCmd struct {
	Line string
}

// Quit asks the bot to quit, with an optional quit message. Only commands at
// the maximum authorization level may produce this reaction.
type Quit struct {
	Message string
}

func (NoReaction) isReaction() {}
func (Msg) isReaction()        {}
func (Msgs) isReaction()       {}
func (Reply) isReaction()      {}
func (Replies) isReaction()    {}
func (RawMsg) isReaction()     {}
func (BotCmd) isReaction()     {}
func (Quit) isReaction()       {}

// LibReaction is wire-level output: either a single protocol message or an
// ordered batch of them. Only the reaction resolver produces these; module
// authors never construct them.
type LibReaction struct {
	Raw   *girc.Event
	Multi []LibReaction
}

func rawReaction(ev *girc.Event) LibReaction {
	return LibReaction{Raw: ev}
}

// collapse turns a slice of wire reactions into a single one, avoiding a
// needless Multi wrapper for the zero- and one-element cases.
func collapse(rs []LibReaction) (LibReaction, bool) {
	switch len(rs) {
	case 0:
		return LibReaction{}, false
	case 1:
		return rs[0], true
	default:
		return LibReaction{Multi: rs}, true
	}
}

func defaultQuitMessage() string {
	return fmt.Sprintf("Built with <%s> v%s", ProjectHomepage, Version)
}

func mkQuit(message string) LibReaction {
	if message == "" {
		message = defaultQuitMessage()
	}
	return rawReaction(&girc.Event{
		Command: girc.QUIT,
		Params:  []string{message},
	})
}
