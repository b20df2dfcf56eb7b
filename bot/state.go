package bot

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// State is the shared, coarse-locked mutable state of one bot: the feature
// registry, the per-server connection table, the per-server cache of the
// bot's own prefix, and the shared RNG.
//
// Dispatch workers read from it concurrently; the registry tables are
// written only through module loading.
type State struct {
	cfg Config

	regMu    sync.RWMutex
	modules  map[string]*Module
	commands map[string]*BotCommand
	triggers map[TriggerPriority][]*Trigger

	connMu sync.RWMutex
	conns  map[ServerID]Conn

	prefixMu sync.RWMutex
	prefixes map[ServerID]Prefix

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewState assembles an empty State around the given configuration.
func NewState(cfg Config) *State {
	cfg.applyDefaults()
	return &State{
		cfg:      cfg,
		modules:  make(map[string]*Module),
		commands: make(map[string]*BotCommand),
		triggers: make(map[TriggerPriority][]*Trigger),
		conns:    make(map[ServerID]Conn),
		prefixes: make(map[ServerID]Prefix),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the configuration the state was built with.
func (s *State) Config() Config {
	return s.cfg
}

// Command looks up a registered command by name.
func (s *State) Command(name string) (*BotCommand, bool) {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	cmd, ok := s.commands[name]
	return cmd, ok
}

// CommandNames returns the names of all registered commands, sorted.
func (s *State) CommandNames() []string {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleNames returns the names of all loaded modules, sorted.
func (s *State) ModuleNames() []string {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HaveAdmin reports whether the given sender matches any configured
// owner/admin entry under the configured comparison policy.
func (s *State) HaveAdmin(p Prefix) bool {
	for _, admin := range s.cfg.Admins {
		if adminMatches(p, admin, s.cfg.AdminMatch) {
			return true
		}
	}
	return false
}

func adminMatches(candidate Prefix, control Admin, policy MatchPolicy) bool {
	switch policy {
	case MatchNickOnly:
		return checkAdminCred(candidate.Nick, control.Nick)
	case MatchUserOnly:
		return checkAdminCred(candidate.User, control.User)
	default:
		return checkAdminCred(candidate.Nick, control.Nick) &&
			checkAdminCred(candidate.User, control.User)
	}
}

// checkAdminCred checks one field of a candidate sender identity against the
// corresponding field of a configured admin entry. A field that is unset in
// the configuration matches unconditionally; a candidate that lacks a field
// the configuration sets does not match.
func checkAdminCred(candidate, control string) bool {
	if control == "" {
		return true
	}
	return candidate == control
}

// registerServer stores the connection handle for a server and seeds the
// prefix cache from the configured identity.
func (s *State) registerServer(id ServerID, conn Conn) {
	s.connMu.Lock()
	s.conns[id] = conn
	s.connMu.Unlock()

	s.prefixMu.Lock()
	s.prefixes[id] = Prefix{Nick: s.cfg.Nickname, User: s.cfg.Username}
	s.prefixMu.Unlock()
}

// deregisterServer clears a server's connection and prefix information. An
// unknown ID is not an error.
func (s *State) deregisterServer(id ServerID) {
	s.connMu.Lock()
	delete(s.conns, id)
	s.connMu.Unlock()

	s.prefixMu.Lock()
	delete(s.prefixes, id)
	s.prefixMu.Unlock()
}

func (s *State) conn(id ServerID) (Conn, bool) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	conn, ok := s.conns[id]
	return conn, ok
}

func (s *State) connIDs() []ServerID {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	ids := make([]ServerID, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	return ids
}

// OwnPrefix returns the bot's best current knowledge of how the server will
// render its sender prefix. Before the first prefix-refresh round-trip this
// is synthesized from the configured identity.
func (s *State) OwnPrefix(id ServerID) Prefix {
	s.prefixMu.RLock()
	defer s.prefixMu.RUnlock()
	if p, ok := s.prefixes[id]; ok {
		return p
	}
	return Prefix{Nick: s.cfg.Nickname, User: s.cfg.Username}
}

// Nick returns the bot's own current nickname on the given server.
func (s *State) Nick(id ServerID) (string, error) {
	nick := s.OwnPrefix(id).Nick
	if nick == "" {
		return "", ErrNicknameUnknown
	}
	return nick, nil
}

// updateOwnPrefix merges freshly observed prefix information over the cached
// value. Each field the observation carries overwrites the stored one.
func (s *State) updateOwnPrefix(id ServerID, observed Prefix) {
	s.prefixMu.Lock()
	defer s.prefixMu.Unlock()
	s.prefixes[id] = s.prefixes[id].mergedWith(observed)
}

func (s *State) prefixLen(id ServerID) int {
	return s.OwnPrefix(id).Len()
}

// randIntn draws from the shared RNG, holding its lock only for the one
// selection.
func (s *State) randIntn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}
