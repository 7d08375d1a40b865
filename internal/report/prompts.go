package report

import "fmt"

const (
	classifyMaxTokens = 10

	summaryMaxTokens   = 500
	summaryTemperature = 0.7
)

// classifyPrompt asks for a binary informative/chatter label for one message.
func classifyPrompt(text string) string {
	return fmt.Sprintf(`Is this chat message informative (discussion, decision,
knowledge sharing) or just chatter?
Message: %s
Answer with exactly one word: informative or chatter.`, text)
}

// summaryPrompt asks for a free-text summary of the day's conversation.
func summaryPrompt(conversation string) string {
	return fmt.Sprintf(`Below is today's conversation from the team channel.
Summarize the main discussion points, the decisions made, and the next steps,
in the same language as the conversation:

%s

Use this structure:
1. Main discussion points
2. Decisions
3. Next steps
4. Notable items`, conversation)
}
