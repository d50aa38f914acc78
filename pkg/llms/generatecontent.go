package llms

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrEmptyResponse is returned when a provider returns no choices.
var ErrEmptyResponse = errors.New("no response")

// Role is the author of a message.
type Role string

const (
	RoleAI     Role = "ai"
	RoleHuman  Role = "human"
	RoleSystem Role = "system"
	// RoleGeneric is sent as a user message.
	RoleGeneric Role = "generic"
)

// Message is one chat turn.
type Message struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// ContentPart is a part of a message, only text is supported.
type ContentPart interface {
	isPart()
}

// TextContent is a text part.
type TextContent struct {
	Text string `json:"text"`
}

// TextPart returns a text part.
func TextPart(s string) TextContent {
	return TextContent{Text: s}
}

func (tc TextContent) String() string {
	return tc.Text
}

func (TextContent) isPart() {}

// ContentResponse is the result of GenerateContent.
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice is one completion.
type ContentChoice struct {
	Content string `json:"content"`

	// StopReason is reported by the provider, e.g. "stop" or "length".
	StopReason string `json:"stop_reason"`

	// GenerationInfo holds token usage: PromptTokens, CompletionTokens, TotalTokens.
	GenerationInfo map[string]any `json:"generation_info"`
}

// MessageFromTextParts returns a message with one text part per string.
func MessageFromTextParts(role Role, parts ...string) Message {
	msg := Message{
		Role:  role,
		Parts: make([]ContentPart, len(parts)),
	}
	for i, part := range parts {
		msg.Parts[i] = TextPart(part)
	}
	return msg
}

// GetContent returns the text parts of the message joined by new lines.
func (m Message) GetContent() string {
	var buf strings.Builder
	for i, p := range m.Parts {
		if tc, ok := p.(TextContent); ok {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(tc.Text)
		}
	}
	return buf.String()
}

// GenerateFromSinglePrompt sends prompt as a single human message and
// returns the content of the first choice.
func GenerateFromSinglePrompt(ctx context.Context, llm Model, prompt string, options ...CallOption) (string, error) {
	msg := MessageFromTextParts(RoleHuman, prompt)
	resp, err := llm.GenerateContent(ctx, []Message{msg}, options...)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
