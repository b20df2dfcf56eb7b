package bot

import (
	"errors"
	"regexp"
	"testing"
)

func mkTriggerModule(t *testing.T, moduleName string, decl func(*ModuleBuilder)) *Module {
	t.Helper()
	b := NewModule(moduleName)
	decl(b)
	m, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func replyWith(text string) TriggerHandler {
	return TriggerHandlerFunc(func(*Context, []string) BotCmdResult {
		return CmdOK{Reaction: Reply{Text: text}}
	})
}

func loadAll(t *testing.T, s *State, modules ...*Module) {
	t.Helper()
	if errs := s.LoadModules(modules, LoadAdd); len(errs) != 0 {
		t.Fatalf("loading modules: %v", errs)
	}
}

func replyText(t *testing.T, result BotCmdResult) string {
	t.Helper()
	ok, isOK := result.(CmdOK)
	if !isOK {
		t.Fatalf("result = %#v, want CmdOK", result)
	}
	reply, isReply := ok.Reaction.(Reply)
	if !isReply {
		t.Fatalf("reaction = %#v, want Reply", ok.Reaction)
	}
	return reply.Text
}

func TestTriggerInvalidPatternIsRejected(t *testing.T) {
	_, err := NewModule("m").
		Trigger("broken", `(unclosed`, "", PriorityMedium, replyWith("x")).
		Build()
	if err == nil {
		t.Fatal("expected an error for an invalid trigger pattern")
	}
}

func TestHigherPriorityBucketMasksLower(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s,
		mkTriggerModule(t, "low", func(b *ModuleBuilder) {
			b.Trigger("low-hello", `hello`, "", PriorityLow, replyWith("low"))
		}),
		mkTriggerModule(t, "high", func(b *ModuleBuilder) {
			b.Trigger("high-hello", `hello`, "", PriorityHigh, replyWith("high"))
		}),
	)

	result, matched := s.runAnyMatching("hello world", MsgMetadata{})
	if !matched {
		t.Fatal("expected a trigger to match")
	}
	if got := replyText(t, result); got != "high" {
		t.Errorf("reply = %q, want the higher-priority trigger's", got)
	}
}

func TestNonMatchingHighBucketFallsThrough(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s,
		mkTriggerModule(t, "low", func(b *ModuleBuilder) {
			b.Trigger("low-hello", `hello`, "", PriorityLow, replyWith("low"))
		}),
		mkTriggerModule(t, "high", func(b *ModuleBuilder) {
			b.Trigger("high-bye", `goodbye`, "", PriorityHigh, replyWith("high"))
		}),
	)

	result, matched := s.runAnyMatching("hello world", MsgMetadata{})
	if !matched {
		t.Fatal("a high-priority bucket with no match must not shadow lower buckets")
	}
	if got := replyText(t, result); got != "low" {
		t.Errorf("reply = %q, want %q", got, "low")
	}
}

func TestNoTriggerMatches(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s, mkTriggerModule(t, "m", func(b *ModuleBuilder) {
		b.Trigger("hello", `hello`, "", PriorityMedium, replyWith("x"))
	}))

	if _, matched := s.runAnyMatching("nothing of note", MsgMetadata{}); matched {
		t.Error("expected no match")
	}
}

func TestTriggerReceivesCaptures(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})

	var got []string
	loadAll(t, s, mkTriggerModule(t, "m", func(b *ModuleBuilder) {
		b.Trigger("greeting", `hello,? (\w+)`, "", PriorityMedium,
			TriggerHandlerFunc(func(_ *Context, captures []string) BotCmdResult {
				got = append([]string(nil), captures...)
				return CmdOK{Reaction: NoReaction{}}
			}))
	}))

	if _, matched := s.runAnyMatching("well hello, bob!", MsgMetadata{}); !matched {
		t.Fatal("expected a match")
	}
	if len(got) != 2 || got[0] != "hello, bob" || got[1] != "bob" {
		t.Errorf("captures = %q", got)
	}
}

func TestTriggerPatternHotSwap(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s, mkTriggerModule(t, "m", func(b *ModuleBuilder) {
		b.Trigger("watcher", `old`, "", PriorityMedium, replyWith("x"))
	}))

	trigger := s.findTrigger("watcher")
	if trigger == nil {
		t.Fatal("trigger not registered")
	}
	trigger.SetPattern(regexp.MustCompile(`new`))

	if _, matched := s.runAnyMatching("old text", MsgMetadata{}); matched {
		t.Error("the old pattern should no longer match")
	}
	if _, matched := s.runAnyMatching("new text", MsgMetadata{}); !matched {
		t.Error("the new pattern should match")
	}
}

func TestTriggerSelectionStaysWithinBucketMatches(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s, mkTriggerModule(t, "m", func(b *ModuleBuilder) {
		b.Trigger("a", `ping`, "", PriorityMedium, replyWith("a"))
		b.Trigger("b", `ping`, "", PriorityMedium, replyWith("b"))
		b.Trigger("c", `never-matches-zzz`, "", PriorityMedium, replyWith("c"))
	}))

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		result, matched := s.runAnyMatching("ping", MsgMetadata{})
		if !matched {
			t.Fatal("expected a match")
		}
		seen[replyText(t, result)] = true
	}
	if seen["c"] {
		t.Error("a non-matching trigger was selected")
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("selection over 100 runs never chose both matching triggers: %v", seen)
	}
}

func TestTriggerPanicIsIsolated(t *testing.T) {
	s := NewState(Config{Nickname: "quail"})
	loadAll(t, s, mkTriggerModule(t, "m", func(b *ModuleBuilder) {
		b.Trigger("boom", `boom`, "", PriorityMedium,
			TriggerHandlerFunc(func(*Context, []string) BotCmdResult {
				panic("kaboom")
			}))
	}))

	result, matched := s.runAnyMatching("boom", MsgMetadata{})
	if !matched {
		t.Fatal("expected a match")
	}
	libErr, isLibErr := result.(LibErr)
	if !isLibErr {
		t.Fatalf("result = %#v, want LibErr", result)
	}
	var panicErr *HandlerPanicError
	if !errors.As(libErr.Err, &panicErr) {
		t.Fatalf("error = %v, want HandlerPanicError", libErr.Err)
	}
	if panicErr.Value != "kaboom" {
		t.Errorf("panic value = %v, want %q", panicErr.Value, "kaboom")
	}
}
