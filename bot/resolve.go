package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lrstanley/girc"
)

// rawMessageLenLimit is the hard protocol budget for one wire line,
// including the trailing CRLF.
const rawMessageLenLimit = 512

// messageBudget computes how many bytes of content fit in one PRIVMSG to the
// given target, once the server's echo-back rendering of the bot's own
// prefix, the command keyword, the target, and the fixed punctuation are
// accounted for:
//
//	:nick!user@host PRIVMSG target :message\r\n
func (s *State) messageBudget(serverID ServerID, target string) int {
	const punctuationLen = 2 /* colons */ + 3 /* spaces */ + 2 /* line terminator */
	metadataLen := s.prefixLen(serverID) + len(girc.PRIVMSG) + len(target) + punctuationLen
	budget := rawMessageLenLimit - metadataLen
	if budget < 1 {
		budget = 1
	}
	return budget
}

// wrapLine wraps one line of content (no embedded line breaks) into wire
// lines of at most budget bytes, accumulating whitespace-delimited words
// greedily. A single word longer than the budget is hard-cut at the budget
// boundary.
func wrapLine(line string, budget int, emit func(string)) {
	if len(line) < budget {
		emit(line)
		return
	}

	var current string
	for _, word := range strings.Fields(line) {
		for len(word) > budget {
			if current != "" {
				emit(current)
				current = ""
			}
			emit(word[:budget])
			word = word[budget:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= budget:
			current += " " + word
		default:
			emit(current)
			current = word
		}
	}
	if current != "" {
		emit(current)
	}
}

// composeMsg renders one message to the given destination, prefixing the
// addressee (if any) and wrapping each embedded line independently.
func (s *State) composeMsg(dest MsgDest, addressee, text string) (LibReaction, bool) {
	final := text
	if addressee != "" {
		final = addressee + s.cfg.AddresseeSuffix + text
	}

	slog.Info("sending message", "server", dest.ServerID, "target", dest.Target, "text", final)

	budget := s.messageBudget(dest.ServerID, dest.Target)

	lines := strings.Split(final, "\n")
	// An entirely empty message, or a trailing line break, yields no
	// (empty) wire line; servers reject PRIVMSGs with no text.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var wrapped []LibReaction
	for _, inputLine := range lines {
		inputLine = strings.TrimSuffix(inputLine, "\r")
		wrapLine(inputLine, budget, func(outputLine string) {
			wrapped = append(wrapped, rawReaction(&girc.Event{
				Command: girc.PRIVMSG,
				Params:  []string{dest.Target, outputLine},
			}))
		})
	}

	return collapse(wrapped)
}

func (s *State) composeMsgs(dest MsgDest, addressee string, texts []string) (LibReaction, bool) {
	var output []LibReaction
	for _, text := range texts {
		if lr, ok := s.composeMsg(dest, addressee, text); ok {
			output = append(output, lr)
		}
	}
	return collapse(output)
}

// resolveReaction turns a handler's Reaction into wire-ready output.
//
// Replies go back to the channel the message came from, addressed to the
// sender; if the original destination was the bot itself (one-to-one), they
// go to the sender's nick with no addressee prefix. Resolution is a pure
// function of the reaction and the bot's current cached state.
func (s *State) resolveReaction(metadata MsgMetadata, reaction Reaction) (LibReaction, bool, error) {
	nick, err := s.Nick(metadata.Dest.ServerID)
	if err != nil {
		return LibReaction{}, false, err
	}

	replyDest := metadata.Dest
	replyAddressee := metadata.Prefix.Nick
	if metadata.Dest.Target == nick {
		replyDest.Target = metadata.Prefix.Nick
		replyAddressee = ""
	}
	compose := func(addressee string, texts []string) (LibReaction, bool, error) {
		if replyDest.Target == "" {
			return LibReaction{}, false, fmt.Errorf("cannot infer a reply target: the message carried no sender nick")
		}
		lr, ok := s.composeMsgs(replyDest, addressee, texts)
		return lr, ok, nil
	}

	switch r := reaction.(type) {
	case nil, NoReaction:
		return LibReaction{}, false, nil
	case Msg:
		return compose("", []string{r.Text})
	case Msgs:
		return compose("", r.Texts)
	case Reply:
		return compose(replyAddressee, []string{r.Text})
	case Replies:
		return compose(replyAddressee, r.Texts)
	case RawMsg:
		ev := girc.ParseEvent(r.Raw)
		if ev == nil {
			return LibReaction{}, false, fmt.Errorf("unparsable raw message %q", r.Raw)
		}
		return rawReaction(ev), true, nil
	case Quit:
		return mkQuit(r.Message), true, nil
	default:
		return LibReaction{}, false, fmt.Errorf("unsupported reaction type %T", reaction)
	}
}
