package bot

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lrstanley/girc"
	"golang.org/x/sync/errgroup"
)

// Bot owns the concurrency harness around one State: a receive loop per
// attached server, one dispatch worker per inbound command, and the single
// sender worker draining the outbox.
type Bot struct {
	state  *State
	outbox chan OutboxRecord

	recvGroup  errgroup.Group
	dispatchWG sync.WaitGroup
	senderDone chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// New assembles a Bot around the given configuration.
func New(cfg Config) *Bot {
	state := NewState(cfg)
	return &Bot{
		state:      state,
		outbox:     make(chan OutboxRecord, state.cfg.OutboxSize),
		senderDone: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// State exposes the shared bot state, e.g. for loading modules.
func (b *Bot) State() *State {
	return b.state
}

// LoadModules loads the given modules into the registry, accumulating
// per-module errors. Rejected loads are reported, never fatal.
func (b *Bot) LoadModules(modules []*Module, mode LoadMode) []error {
	return b.state.LoadModules(modules, mode)
}

// Start launches the sender worker. Servers are attached separately.
func (b *Bot) Start() {
	b.startOnce.Do(func() {
		b.started.Store(true)
		go func() {
			defer close(b.senderDone)
			b.sendWorker()
		}()
		slog.Info("started bot", "nick", b.state.cfg.Nickname,
			"modules", b.state.ModuleNames(), "commands", b.state.CommandNames())
	})
}

// AttachServer registers a connection under a fresh server ID, sends the
// identification sequence, and starts the receive loop for it. Messages
// from one connection are dispatched in arrival order; completion order is
// up to the workers.
func (b *Bot) AttachServer(conn Conn) (ServerID, error) {
	select {
	case <-b.done:
		return ServerID{}, errors.New("bot is shutting down")
	default:
	}

	serverID := NewServerID()
	b.state.registerServer(serverID, conn)

	for _, ev := range b.identificationSequence() {
		if err := conn.Send(ev); err != nil {
			b.state.deregisterServer(serverID)
			return ServerID{}, err
		}
	}

	b.recvGroup.Go(func() error {
		b.recvLoop(serverID, conn)
		return nil
	})

	slog.Info("attached server", "server", serverID)
	return serverID, nil
}

func (b *Bot) identificationSequence() []*girc.Event {
	return []*girc.Event{
		{Command: girc.NICK, Params: []string{b.state.cfg.Nickname}},
		{Command: girc.USER, Params: []string{b.state.cfg.Username, "8", "*", b.state.cfg.Realname}},
	}
}

func (b *Bot) recvLoop(serverID ServerID, conn Conn) {
	defer b.state.deregisterServer(serverID)

	for {
		ev, err := conn.Receive()
		if err != nil {
			select {
			case <-b.done:
			default:
				slog.Error("receive loop ended", "server", serverID, "error", err)
			}
			return
		}
		b.handleMessage(serverID, ev)
	}
}

// Stop tears the harness down in order: connections first (ending the
// receive loops), then in-flight dispatch workers, then the outbox and its
// sender worker.
func (b *Bot) Stop() error {
	var errs []error

	b.stopOnce.Do(func() {
		close(b.done)

		for _, id := range b.state.connIDs() {
			if conn, ok := b.state.conn(id); ok {
				if err := conn.Close(); err != nil {
					errs = append(errs, err)
				}
			}
		}

		_ = b.recvGroup.Wait()
		b.dispatchWG.Wait()

		close(b.outbox)
		if b.started.Load() {
			<-b.senderDone
		}

		slog.Info("stopped bot")
	})

	return errors.Join(errs...)
}
