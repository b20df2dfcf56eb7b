package bot

// ProjectName and ProjectHomepage identify this framework in user-visible
// messages such as the output of the default module's "source" command.
const (
	ProjectName     = "quail"
	ProjectHomepage = "https://github.com/quailbot/quail"
)

// Version is set at build time via ldflags:
// go build -ldflags "-X github.com/quailbot/quail/bot.Version=1.0.0" ./cmd/ircbotd
var Version = "dev"
