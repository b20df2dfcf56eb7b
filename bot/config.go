package bot

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// MatchPolicy selects which axes of a sender identity are compared against
// admin entries during authorization.
type MatchPolicy int

const (
	// MatchNickAndUser compares both the nick and user axes.
	MatchNickAndUser MatchPolicy = iota

	// MatchNickOnly compares only the nick axis.
	MatchNickOnly

	// MatchUserOnly compares only the user axis.
	MatchUserOnly
)

// ParseMatchPolicy parses the textual policy names used in configuration.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case "nick+user", "":
		return MatchNickAndUser, nil
	case "nick", "nick-only":
		return MatchNickOnly, nil
	case "user", "user-only":
		return MatchUserOnly, nil
	default:
		return 0, fmt.Errorf("unknown admin match policy %q", s)
	}
}

// Admin is one configured owner/admin entry. Empty fields are unset and
// match unconditionally.
type Admin struct {
	Nick string
	User string
	Host string
}

// ParseAdmin parses an admin entry in `nick!user@host` form; the `!user` and
// `@host` segments are optional.
func ParseAdmin(s string) Admin {
	p := ParsePrefix(s)
	return Admin{Nick: p.Nick, User: p.User, Host: p.Host}
}

// Config holds the validated values the core needs. Loading and validating
// them (environment, files, flags) is the embedding program's concern;
// LoadConfig covers the environment-variable case the reference binary uses.
type Config struct {
	// Server is the host:port of the IRC server the reference binary
	// connects to. The core itself never dials; connections are attached.
	Server string

	// Nickname is the nick the bot identifies with.
	Nickname string

	// Username is the IRC username; defaults to Nickname.
	Username string

	// Realname is the free-form real-name field; defaults to Nickname.
	Realname string

	// Admins are the configured owner/admin entries.
	Admins []Admin

	// AdminMatch is the comparison policy for admin authorization.
	AdminMatch MatchPolicy

	// AddresseeSuffix separates the addressee from the message body in
	// replies. Defaults to ": ".
	AddresseeSuffix string

	// OutboxSize bounds the outbound message queue. Defaults to 256.
	OutboxSize int
}

func (c *Config) applyDefaults() {
	if c.Username == "" {
		c.Username = c.Nickname
	}
	if c.Realname == "" {
		c.Realname = c.Nickname
	}
	if c.AddresseeSuffix == "" {
		c.AddresseeSuffix = ": "
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = defaultOutboxSize
	}
}

type envConfig struct {
	Server     string   `env:"IRC_SERVER"`
	Nickname   string   `env:"IRC_NICK,notEmpty"`
	Username   string   `env:"IRC_USER"`
	Realname   string   `env:"IRC_REALNAME"`
	Admins     []string `env:"IRC_ADMINS" envSeparator:","`
	AdminMatch string   `env:"IRC_ADMIN_MATCH" envDefault:"nick+user"`
	OutboxSize int      `env:"IRC_OUTBOX_SIZE" envDefault:"256"`
}

// LoadConfig loads configuration from environment variables. Returns an
// error if required fields are missing or malformed.
func LoadConfig() (*Config, error) {
	raw := envConfig{}
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}

	policy, err := ParseMatchPolicy(raw.AdminMatch)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:     raw.Server,
		Nickname:   raw.Nickname,
		Username:   raw.Username,
		Realname:   raw.Realname,
		AdminMatch: policy,
		OutboxSize: raw.OutboxSize,
	}
	for _, entry := range raw.Admins {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		cfg.Admins = append(cfg.Admins, ParseAdmin(entry))
	}
	cfg.applyDefaults()

	return cfg, nil
}
