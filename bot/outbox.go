package bot

import (
	"fmt"
	"log/slog"

	"github.com/lrstanley/girc"
)

// defaultOutboxSize bounds the outbound queue when the configuration does
// not say otherwise.
const defaultOutboxSize = 256

// OutboxRecord is the unit enqueued on the outbox: one wire-ready reaction
// tagged with the server it is bound for.
type OutboxRecord struct {
	ServerID ServerID
	Reaction LibReaction
}

// pushToOutbox enqueues a record without blocking. A full outbox drops the
// record with a logged error; backpressure is never propagated to dispatch
// workers.
func (b *Bot) pushToOutbox(serverID ServerID, lr LibReaction) {
	if lr.Raw == nil && len(lr.Multi) == 0 {
		return
	}

	select {
	case <-b.done:
		slog.Warn("dropping outbound reaction: bot is shutting down", "server", serverID)
		return
	default:
	}

	select {
	case b.outbox <- OutboxRecord{ServerID: serverID, Reaction: lr}:
	default:
		slog.Error("dropping outbound reaction: outbox is full", "server", serverID)
	}
}

// sendWorker is the single long-lived consumer draining the outbox in FIFO
// order. It runs until the outbox is closed; no failure it encounters is
// allowed to escape.
func (b *Bot) sendWorker() {
	for record := range b.outbox {
		b.deliver(record)
	}
}

func (b *Bot) deliver(record OutboxRecord) {
	conn, ok := b.state.conn(record.ServerID)
	if !ok {
		slog.Warn("dropping outbound reaction", "error",
			&UnknownServerError{ServerID: record.ServerID})
		return
	}
	b.sendReaction(conn, record.ServerID, record.Reaction, 0)
}

// sendReaction performs the actual send. A send failure is converted into a
// second, bounded-depth error-reaction pass; if that pass also fails, the
// failure is only logged, preventing unbounded recursive error handling.
func (b *Bot) sendReaction(conn Conn, serverID ServerID, lr LibReaction, depth int) {
	if lr.Raw == nil {
		for _, child := range lr.Multi {
			b.sendReaction(conn, serverID, child, depth)
		}
		return
	}

	slog.Debug("sending message", "server", serverID, "message", lr.Raw.String())

	err := conn.Send(lr.Raw)
	if err == nil {
		return
	}

	if depth >= 1 {
		slog.Error("failed to send error reaction; giving up",
			"server", serverID, "error", err)
		return
	}

	slog.Error("failed to send message", "server", serverID, "error", err)

	if errReaction, ok := b.mkSendErrorReaction(serverID, lr.Raw, err); ok {
		b.sendReaction(conn, serverID, errReaction, depth+1)
	}
}

// mkSendErrorReaction builds a user-visible notice about a failed send,
// bound for the same conversation the failed message belonged to. Only
// messages with an obvious conversation target get one.
func (b *Bot) mkSendErrorReaction(serverID ServerID, failed *girc.Event, sendErr error) (LibReaction, bool) {
	if failed.Command != girc.PRIVMSG && failed.Command != girc.NOTICE {
		return LibReaction{}, false
	}
	if len(failed.Params) == 0 {
		return LibReaction{}, false
	}

	dest := MsgDest{ServerID: serverID, Target: failed.Params[0]}
	text := fmt.Sprintf("Error: Failed to send a message here: %s", sendErr)
	return b.state.composeMsg(dest, "", text)
}
