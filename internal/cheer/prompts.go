package cheer

import "fmt"

// cheerPrompt builds the completion prompt for one encouragement reply.
// The reply must stay in the language of the original message so the bot
// blends into whatever language the channel speaks.
func cheerPrompt(displayName, messageText string) string {
	return fmt.Sprintf(`The following message was written by %[1]s. Write a short,
friendly encouragement reply that strongly agrees with it and praises the
writer. Keep it to 2-3 lines, and answer in the same language as the message.

%[1]s's message:
%[2]s

Example reply:
What a brilliant point! Thanks to %[1]s the whole team is going to level up.
That kind of insight is truly inspiring! 👏`, displayName, messageText)
}
