package main

import (
	"context"
	"fmt"
	"strings"

	"problem-navigator/agents"
	"problem-navigator/llm"
)

// GenerateConversationTitle generates a short title from the first user
// message using the flash model.
func GenerateConversationTitle(ctx context.Context, client llm.Client, firstMessage string) (string, error) {
	titlePrompt := fmt.Sprintf(`Generate a very short title (3-5 words maximum) that summarizes the following problem statement.
The title should be concise and descriptive. Do not use quotes or punctuation in the title.

Problem: %s

Title:`, firstMessage)

	ctx, cancel := context.WithTimeout(ctx, TitleGenTimeout)
	defer cancel()

	response, err := client.Generate(ctx, agents.ModelFast, titlePrompt)
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}

	title := strings.TrimSpace(response.Content)

	// Clean up the title - remove quotes
	title = strings.Trim(title, "\"'")

	// Truncate if too long
	if len(title) > 50 {
		title = title[:47] + "..."
	}

	return title, nil
}
