package bot

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"
)

// ServerID identifies one server connection for the lifetime of the process.
type ServerID struct {
	id uuid.UUID
}

// NewServerID returns a fresh, process-unique server identifier.
func NewServerID() ServerID {
	return ServerID{id: uuid.New()}
}

func (s ServerID) String() string {
	return s.id.String()
}

// Prefix is a parsed sender identity (the `nick!user@host` part of a message
// source). Empty fields are absent.
type Prefix struct {
	Nick string
	User string
	Host string
}

// ParsePrefix parses a raw `nick!user@host` string.
func ParsePrefix(raw string) Prefix {
	src := girc.ParseSource(raw)
	if src == nil {
		return Prefix{}
	}
	return Prefix{Nick: src.Name, User: src.Ident, Host: src.Host}
}

func prefixFromSource(src *girc.Source) Prefix {
	if src == nil {
		return Prefix{}
	}
	return Prefix{Nick: src.Name, User: src.Ident, Host: src.Host}
}

func (p Prefix) String() string {
	switch {
	case p.User == "" && p.Host == "":
		return p.Nick
	case p.User == "":
		return p.Nick + "@" + p.Host
	default:
		return p.Nick + "!" + p.User + "@" + p.Host
	}
}

// Len returns an upper bound on the rendered length of the prefix, accurate
// to within a few bytes.
func (p Prefix) Len() int {
	return len(p.Nick) + len(p.User) + len(p.Host) + 2
}

// mergedWith writes each non-empty field of new over the corresponding field
// of p and returns the result.
func (p Prefix) mergedWith(new Prefix) Prefix {
	if new.Nick != "" {
		p.Nick = new.Nick
	}
	if new.User != "" {
		p.User = new.User
	}
	if new.Host != "" {
		p.Host = new.Host
	}
	return p
}

// MsgDest identifies where a message was sent: which server, and which
// channel or nick on that server.
type MsgDest struct {
	ServerID ServerID
	Target   string
}

// MsgMetadata carries the parsed sender and destination of one inbound
// message. It is immutable once constructed.
type MsgMetadata struct {
	Dest   MsgDest
	Prefix Prefix
}

// addressedChars are the characters that may follow the bot's nickname when a
// channel message is addressed to it, as in "quail: ping".
const addressedChars = ":,"

// isMsgToNick reports whether a message counts as addressed to the given
// nick: either it was sent directly to the nick, or its text leads with the
// nick followed by an addressing character.
func isMsgToNick(target, text, nick string) bool {
	if nick == "" {
		return false
	}
	if target == nick || text == nick {
		return true
	}
	if !strings.HasPrefix(text, nick) {
		return false
	}
	return strings.IndexAny(text, addressedChars) == len(nick)
}

// parseMsgToNick strips the addressing preamble off a message addressed to
// the given nick, returning the remaining command line. The second return
// value is false if the message is not addressed to the nick at all.
func parseMsgToNick(text, target, nick string) (string, bool) {
	if !isMsgToNick(target, text, nick) {
		return "", false
	}
	s := strings.TrimPrefix(text, nick)
	s = strings.TrimLeft(s, addressedChars)
	return strings.TrimSpace(s), true
}
