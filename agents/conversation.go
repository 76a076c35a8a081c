package agents

import (
	"fmt"
	"strings"

	"problem-navigator/llm"
)

// Conversation windows per pipeline stage. Classifiers read a shorter window
// than the analyzer; heavy prompts truncate per message to stay within token
// budgets.
const (
	classifierWindow    = 10
	classifierCharLimit = 500

	analyzerCharLimit = 800

	fastWindow    = 6
	fastCharLimit = 300

	consolidationWindow    = 6
	consolidationCharLimit = 400

	executorWindow    = 8
	executorCharLimit = 400

	researchWindow = 8
)

// truncate caps s at limit characters.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// roleLabel maps message roles to prompt labels.
func roleLabel(role string) string {
	if role == "user" {
		return "USER"
	}
	return "ASSISTANT"
}

// formatWindow renders the last `window` messages, each capped at charLimit,
// separated by blank lines.
func formatWindow(conversation []Message, window, charLimit int) string {
	msgs := conversation
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", roleLabel(msg.Role), truncate(msg.Content, charLimit)))
	}
	return strings.Join(lines, "\n\n")
}

// formatIndexed renders the entire conversation with one-based indices, each
// message capped at charLimit. Used by the full context analyzer.
func formatIndexed(conversation []Message, charLimit int) string {
	lines := make([]string, 0, len(conversation))
	for i, msg := range conversation {
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", i+1, roleLabel(msg.Role), truncate(msg.Content, charLimit)))
	}
	return strings.Join(lines, "\n\n")
}

// formatCompact renders the last `window` messages in single-letter role form
// to minimize tokens for the fast analyzer.
func formatCompact(conversation []Message, window, charLimit int) string {
	msgs := conversation
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		label := "A"
		if msg.Role == "user" {
			label = "U"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, truncate(msg.Content, charLimit)))
	}
	return strings.Join(lines, "\n")
}

// formatFull renders the last `window` messages without truncation. Used by
// the research context phase where fidelity matters more than tokens.
func formatFull(conversation []Message, window int) string {
	msgs := conversation
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", roleLabel(msg.Role), msg.Content))
	}
	return strings.Join(lines, "\n")
}

// cleanJSON strips a markdown code fence from a model response so it can be
// unmarshalled. Handles both ``` and ```json fences.
func cleanJSON(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		parts := strings.SplitN(t, "```", 3)
		if len(parts) >= 2 {
			t = parts[1]
		}
		t = strings.TrimPrefix(t, "json")
	}
	return strings.TrimSpace(t)
}

// contextCitation is the trimmed citation form injected into classifier and
// consolidation prompts.
type contextCitation struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ConversationContext is the shared context passed to the classifiers and the
// diagnosis consolidation step.
type ConversationContext struct {
	MessageCount       int               `json:"message_count"`
	UserStatements     []string          `json:"user_statements"`
	AssistantResponses []string          `json:"assistant_responses"`
	Citations          []contextCitation `json:"citations"`
	Summary            string            `json:"conversation_summary"`
}

// BuildContext assembles the shared context: the last three user messages,
// the last two assistant responses, the top five citations (message-embedded
// citations included) and a brief summary.
func BuildContext(conversation []Message, citations []llm.Citation) *ConversationContext {
	all := make([]llm.Citation, 0, len(citations))
	all = append(all, citations...)
	for _, msg := range conversation {
		all = append(all, msg.Citations...)
	}

	var userMsgs, assistantMsgs []string
	for _, msg := range conversation {
		if msg.Role == "user" {
			userMsgs = append(userMsgs, msg.Content)
		} else {
			assistantMsgs = append(assistantMsgs, msg.Content)
		}
	}

	cc := &ConversationContext{
		MessageCount: len(conversation),
		Summary:      summarizeConversation(conversation),
	}
	if len(userMsgs) > 3 {
		userMsgs = userMsgs[len(userMsgs)-3:]
	}
	cc.UserStatements = userMsgs
	if len(assistantMsgs) > 2 {
		assistantMsgs = assistantMsgs[len(assistantMsgs)-2:]
	}
	cc.AssistantResponses = assistantMsgs

	for _, c := range all {
		if len(cc.Citations) >= 5 {
			break
		}
		cc.Citations = append(cc.Citations, contextCitation{
			Title: c.Title,
			Text:  truncate(c.Text, 200),
		})
	}
	return cc
}

// summarizeConversation builds a brief summary from the first user message
// and the latest exchange.
func summarizeConversation(conversation []Message) string {
	if len(conversation) < 2 {
		return "Conversation just started."
	}

	var firstUser string
	for _, msg := range conversation {
		if msg.Role == "user" {
			firstUser = truncate(msg.Content, 300)
			break
		}
	}

	var latestUser, latestAssistant string
	for i := len(conversation) - 1; i >= 0; i-- {
		msg := conversation[i]
		if msg.Role == "user" && latestUser == "" {
			latestUser = truncate(msg.Content, 200)
		} else if msg.Role != "user" && latestAssistant == "" {
			latestAssistant = truncate(msg.Content, 200)
		}
		if latestUser != "" && latestAssistant != "" {
			break
		}
	}

	return fmt.Sprintf("Initial: %s\nLatest exchange - User: %s\nAssistant: %s",
		firstUser, latestUser, latestAssistant)
}
