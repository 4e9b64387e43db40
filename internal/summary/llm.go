package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is used when no chat model is configured.
const DefaultChatModel = goopenai.GPT4oMini

const (
	llmMaxItems     = 10
	llmSnippetChars = 500
	llmTemperature  = 0.3
	llmMaxTokens    = 500
	llmSystemPrompt = "You summarize web research findings. Write a concise factual summary of the provided pages in at most five sentences. Mention only information present in the excerpts."
)

// ChatCompleter is the slice of the OpenAI SDK the LLM summarizer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// LLM summarizes a group with a chat model. Callers should pair it with an
// extractive fallback since the endpoint can fail at any time.
type LLM struct {
	api   ChatCompleter
	model string
}

// NewLLM builds the chat-backed strategy. The client is injected so tests
// and alternative endpoints need no network.
func NewLLM(api ChatCompleter, model string) (*LLM, error) {
	if api == nil {
		return nil, errors.New("summary: llm summarizer requires a chat client")
	}
	if model == "" {
		model = DefaultChatModel
	}
	return &LLM{api: api, model: model}, nil
}

// Summarize prompts the model with the group's top page excerpts.
func (l *LLM) Summarize(ctx context.Context, g Group) (string, error) {
	items := g.Items
	if len(items) > llmMaxItems {
		items = items[:llmMaxItems]
	}
	if len(items) == 0 {
		return EmptySummary, nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Topic: %s", g.Keyword)
	if g.Description != "" {
		fmt.Fprintf(&prompt, " (%s)", g.Description)
	}
	prompt.WriteString("\n\nPages:\n")
	for _, src := range items {
		fmt.Fprintf(&prompt, "- %s: %s\n", src.Title, snippet(src.Content, llmSnippetChars))
	}

	resp, err := l.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return EmptySummary, nil
	}
	return text, nil
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
