// Package test provides self-test commands exercising the framework's
// line-wrapping and panic-catching machinery against a live server.
package test

import "github.com/quailbot/quail/bot"

const loremIpsumText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Integer et " +
	"tincidunt nibh. Nullam aliquet imperdiet cursus. Duis at turpis mollis, iaculis quam sed, " +
	"efficitur arcu. Sed vel massa sit amet magna efficitur hendrerit. Donec auctor auctor " +
	"ligula nec semper. Nulla a odio suscipit, suscipit velit in, ullamcorper velit. In " +
	"bibendum pulvinar ipsum. Fusce elementum maximus mattis. Donec sed mauris nec ante " +
	"eleifend dapibus non faucibus massa. Vivamus a auctor ligula. Cras hendrerit, velit sit " +
	"amet sagittis placerat, elit elit feugiat quam, vel aliquet ligula elit sit amet nibh. " +
	"Fusce dignissim, orci vitae sodales ornare, lacus risus facilisis sem, a imperdiet lectus " +
	"massa at velit. Etiam sed magna congue, pulvinar diam quis, facilisis risus. Sed semper, " +
	"lectus vulputate luctus fermentum, quam lacus consectetur arcu, ac mollis ipsum metus vel " +
	"nunc. Ut posuere arcu enim, id dictum arcu sagittis in. Mauris a lectus nec ligula " +
	"eleifend rutrum. Class aptent taciti sociosqu ad litora torquent per conubia massa nunc."

// New builds the self-test module.
func New() *bot.Module {
	return bot.NewModule("test").
		Command("test-line-wrap", "",
			"Request a long message from the bot, to test its line-wrapping function.",
			bot.AuthAdmin, bot.CommandHandlerFunc(testLineWrap)).
		Command("test-panic-catching", "",
			"This command's handler function panics, to test the bot framework's panic-catching mechanism.",
			bot.AuthAdmin, bot.CommandHandlerFunc(testPanicCatching)).
		MustBuild()
}

func testLineWrap(_ *bot.Context, _ string) bot.BotCmdResult {
	return bot.CmdOK{Reaction: bot.Reply{Text: loremIpsumText}}
}

func testPanicCatching(_ *bot.Context, _ string) bot.BotCmdResult {
	panic("Panicking for testing purposes....")
}
