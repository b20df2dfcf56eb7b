package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/lrstanley/girc"
)

func pingModule(t *testing.T) *Module {
	t.Helper()
	m, err := NewModule("ping").
		Command("ping", "", "Replies with a pong.", AuthPublic,
			CommandHandlerFunc(func(*Context, string) BotCmdResult {
				return CmdOK{Reaction: Reply{Text: "pong!"}}
			})).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBotRunsCommandEndToEnd(t *testing.T) {
	_, conn, _ := newTestBot(t, pingModule(t))

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: ping")

	evs := waitForSent(t, conn, 3)
	ev := evs[2]
	if ev.Command != girc.PRIVMSG || ev.Params[0] != "#chan" {
		t.Fatalf("got %s to %q, want PRIVMSG to #chan", ev.Command, ev.Params[0])
	}
	if ev.Params[1] != "alice: pong!" {
		t.Errorf("reply = %q, want %q", ev.Params[1], "alice: pong!")
	}
}

func TestBotRepliesYesToEmptyAddressedMessage(t *testing.T) {
	_, conn, _ := newTestBot(t)

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail:")

	evs := waitForSent(t, conn, 3)
	if got := evs[2].Params[1]; got != "alice: Yes?" {
		t.Errorf("reply = %q, want %q", got, "alice: Yes?")
	}
}

func TestBotApologizesForUnknownCommand(t *testing.T) {
	_, conn, _ := newTestBot(t)

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: frobnicate now")

	evs := waitForSent(t, conn, 3)
	want := `alice: Unknown command "frobnicate"; apologies.`
	if got := evs[2].Params[1]; got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestBotIgnoresUnaddressedMessages(t *testing.T) {
	_, conn, _ := newTestBot(t, pingModule(t))

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :just chatting about ping")
	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: ping")

	evs := waitForSent(t, conn, 3)
	if len(evs) != 3 {
		t.Fatalf("got %d messages, want 3", len(evs))
	}
	if evs[2].Params[1] != "alice: pong!" {
		t.Errorf("only the addressed message should get a reply, got %q", evs[2].Params[1])
	}
}

func TestBotAnswersPing(t *testing.T) {
	_, conn, _ := newTestBot(t)

	conn.feed(t, "PING :irc.example.com")

	evs := waitForSent(t, conn, 3)
	ev := evs[2]
	if ev.Command != girc.PONG || ev.Params[0] != "irc.example.com" {
		t.Errorf("got %s %v, want PONG irc.example.com", ev.Command, ev.Params)
	}
}

func TestBotRefreshesOwnPrefix(t *testing.T) {
	b, conn, serverID := newTestBot(t)

	// End of the welcome sequence: the bot asks the server how it renders the
	// bot's own prefix.
	conn.feed(t, ":irc.example.com 004 quail irc.example.com testd aiwro biklmnost")

	evs := waitForSent(t, conn, 3)
	ev := evs[2]
	if ev.Command != girc.PRIVMSG || ev.Params[0] != "quail" {
		t.Fatalf("got %s to %q, want PRIVMSG to self", ev.Command, ev.Params[0])
	}
	if !strings.Contains(ev.Params[1], "UPDATE MESSAGE PREFIX") {
		t.Fatalf("self-message = %q, want the prefix refresh request", ev.Params[1])
	}

	// The server echoes the request back with the full rendered prefix.
	conn.feed(t, ":quail!realuser@real.example.com PRIVMSG quail :"+ev.Params[1])

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.State().OwnPrefix(serverID).Host == "real.example.com" {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Errorf("own prefix never refreshed: %v", b.State().OwnPrefix(serverID))
}

func TestBotSurvivesPanickingHandler(t *testing.T) {
	boom, err := NewModule("boom").
		Command("boom", "", "", AuthPublic,
			CommandHandlerFunc(func(*Context, string) BotCmdResult {
				panic("kaboom")
			})).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	_, conn, _ := newTestBot(t, boom, pingModule(t))

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: boom")
	evs := waitForSent(t, conn, 3)
	if got := evs[2].Params[1]; !strings.Contains(got, "Error:") {
		t.Errorf("panic reply = %q, want an error report", got)
	}

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: ping")
	evs = waitForSent(t, conn, 4)
	if got := evs[3].Params[1]; got != "alice: pong!" {
		t.Errorf("bot stopped serving after a handler panic: %q", got)
	}
}

func TestBotRunsTriggerWhenNoCommandMatches(t *testing.T) {
	m, err := NewModule("greeter").
		Trigger("greeting", `^hi\b`, "", PriorityMedium,
			TriggerHandlerFunc(func(*Context, []string) BotCmdResult {
				return CmdOK{Reaction: Reply{Text: "hi yourself"}}
			})).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	_, conn, _ := newTestBot(t, m)

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: hi there")

	evs := waitForSent(t, conn, 3)
	if got := evs[2].Params[1]; got != "alice: hi yourself" {
		t.Errorf("reply = %q, want %q", got, "alice: hi yourself")
	}
}

func TestBotCmdReactionReentersDispatchOnce(t *testing.T) {
	m, err := NewModule("alias").
		Command("p", "", "", AuthPublic,
			CommandHandlerFunc(func(*Context, string) BotCmdResult {
				return CmdOK{Reaction: BotCmd{Line: "ping"}}
			})).
		Command("loop", "", "", AuthPublic,
			CommandHandlerFunc(func(*Context, string) BotCmdResult {
				return CmdOK{Reaction: BotCmd{Line: "loop"}}
			})).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	_, conn, _ := newTestBot(t, m, pingModule(t))

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: p")
	evs := waitForSent(t, conn, 3)
	if got := evs[2].Params[1]; got != "alice: pong!" {
		t.Errorf("aliased reply = %q, want %q", got, "alice: pong!")
	}

	conn.feed(t, ":alice!a@client.example.com PRIVMSG #chan :quail: loop")
	evs = waitForSent(t, conn, 4)
	if got := evs[3].Params[1]; !strings.Contains(got, "Internal error") {
		t.Errorf("self-referential alias reply = %q, want a depth refusal", got)
	}
}

func TestSplitCmdLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		arg  string
	}{
		{"ping", "ping", ""},
		{"join #chan", "join", "#chan"},
		{"join\t#chan", "join", "#chan"},
		{"part  #chan  bye all ", "part", "#chan  bye all"},
		{"help list", "help", "list"},
	}

	for _, tt := range tests {
		name, arg := splitCmdLine(tt.line)
		if name != tt.name || arg != tt.arg {
			t.Errorf("splitCmdLine(%q) = (%q, %q), want (%q, %q)",
				tt.line, name, arg, tt.name, tt.arg)
		}
	}
}

func TestResultToReaction(t *testing.T) {
	cmd := &BotCommand{Name: "frob", Usage: "<thing>"}

	tests := []struct {
		name   string
		result BotCmdResult
		want   string
	}{
		{
			name:   "unauthorized names the command",
			result: Unauthorized{},
			want:   `sufficient authority to use my "frob" command`,
		},
		{
			name:   "param unauthorized names the parameter",
			result: ParamUnauthorized{Param: "force"},
			want:   `the "force" parameter of my "frob" command`,
		},
		{
			name:   "syntax error shows usage",
			result: SyntaxErr{},
			want:   "Syntax: frob <thing>",
		},
		{
			name:   "missing argument",
			result: ArgMissing{Arg: "thing"},
			want:   `the argument "thing" is required`,
		},
		{
			name:   "missing one-to-one argument",
			result: ArgMissing1To1{Arg: "channel"},
			want:   `used outside of a channel`,
		},
		{
			name:   "user error",
			result: UserErrMsg{Text: "nope"},
			want:   "User error: nope",
		},
		{
			name:   "bot error",
			result: BotErrMsg{Text: "oops"},
			want:   "Internal error: oops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reaction := resultToReaction(cmd, "frob", tt.result)
			reply, isReply := reaction.(Reply)
			if !isReply {
				t.Fatalf("reaction = %#v, want Reply", reaction)
			}
			if !strings.Contains(reply.Text, tt.want) {
				t.Errorf("reply %q does not contain %q", reply.Text, tt.want)
			}
		})
	}

	if got := resultToReaction(cmd, "frob", CmdOK{Reaction: Reply{Text: "hi"}}); got != (Reaction(Reply{Text: "hi"})) {
		t.Errorf("CmdOK should pass its reaction through, got %#v", got)
	}
	if got := resultToReaction(nil, "frob", nil); got != (Reaction(NoReaction{})) {
		t.Errorf("nil result should map to NoReaction, got %#v", got)
	}
}

func TestBotRepliesPrivatelyToPrivateMessage(t *testing.T) {
	_, conn, _ := newTestBot(t, pingModule(t))

	conn.feed(t, ":alice!a@client.example.com PRIVMSG quail :ping")

	evs := waitForSent(t, conn, 3)
	ev := evs[2]
	if ev.Params[0] != "alice" {
		t.Errorf("private reply target = %q, want %q", ev.Params[0], "alice")
	}
	if ev.Params[1] != "pong!" {
		t.Errorf("private reply = %q, want no addressee prefix", ev.Params[1])
	}
}
