package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvdbrink/pubtube/model"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a helpful assistant that returns video metadata for YouTube.

Given a video prompt from the user, generate:

- 1 optimized and eye-catching title
- 1 compelling description (up to 500 characters, with hashtags)
- A list of 20 relevant tags (no # symbol)
- A YouTube category

Respond ONLY with raw JSON, no markdown and no code fences, like this:
{
  "title": "",
  "description": "",
  "tags": [],
  "category": ""
}
`

type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIInfo struct {
	APIKey string
	Model  string

	// Footer is appended to every generated description, e.g. channel links.
	Footer string
	// ExtraTags are always added to the generated tag list.
	ExtraTags []string
}

type OpenAI struct {
	client    completionClient
	model     string
	footer    string
	extraTags []string
}

func NewOpenAI(info OpenAIInfo) *OpenAI {
	mdl := info.Model
	if mdl == "" {
		mdl = openai.GPT4
	}

	return &OpenAI{
		client:    openai.NewClient(info.APIKey),
		model:     mdl,
		footer:    info.Footer,
		extraTags: info.ExtraTags,
	}
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (model.Metadata, error) {
	if strings.TrimSpace(prompt) == "" {
		return model.Metadata{}, model.NewError(model.KindPrecondition, "prompt is empty")
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: o.buildInstruction(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Prompt: %s", prompt),
			},
		},
	})
	if err != nil {
		return model.Metadata{}, model.WrapError(model.KindTransport, "metadata generation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return model.Metadata{}, model.NewError(model.KindGeneration, "model returned no choices")
	}

	md, err := ParseMetadata(resp.Choices[len(resp.Choices)-1].Message.Content)
	if err != nil {
		return model.Metadata{}, err
	}
	md.Tags = appendTags(md.Tags, o.extraTags)

	return md, nil
}

func (o *OpenAI) buildInstruction() string {
	if o.footer == "" {
		return systemPrompt
	}

	return fmt.Sprintf("%s\nEnd the description with the following lines, verbatim:\n%s\n", systemPrompt, o.footer)
}

// appendTags adds extras to tags, skipping entries already present under
// case-insensitive comparison.
func appendTags(tags, extras []string) []string {
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		seen[strings.ToLower(tag)] = true
	}
	for _, extra := range extras {
		if seen[strings.ToLower(extra)] {
			continue
		}
		tags = append(tags, extra)
		seen[strings.ToLower(extra)] = true
	}

	return tags
}
