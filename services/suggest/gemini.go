// Package suggest produces dashboard recommendations, through Gemini when a key is configured.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/tuition/core"
)

const maxSuggestions = 5

const prompt = `You are an assistant for the administrator of a tuition centre.
Based on the recent app usage and the data patterns below, suggest up to %d short, concrete actions
the administrator should take next. Answer with a JSON array of strings only, without any other text.

Recent app usage: %s
Data patterns: %s`

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiSuggester struct {
	client *genai.Client
	model  generator
	logger core.Logger
}

var _ core.Suggester = (*GeminiSuggester)(nil)

func NewGeminiSuggester(ctx context.Context, conf *core.Config, logger core.Logger, opts ...option.ClientOption) (*GeminiSuggester, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(conf.Gemini.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}
	model := client.GenerativeModel(conf.Gemini.Model)
	model.SetTemperature(0.4)
	return &GeminiSuggester{client: client, model: model, logger: logger}, nil
}

func (s *GeminiSuggester) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GeminiSuggester) Suggest(ctx context.Context, recentUsage, dataPatterns string) ([]string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(prompt, maxSuggestions, recentUsage, dataPatterns)))
	if err != nil {
		s.logger.Error(fmt.Sprintf("gemini: %v", err), err)
		return nil, core.ErrSuggestionsUnavailable
	}

	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	suggestions, err := parse(text.String())
	if err != nil {
		s.logger.Error(fmt.Sprintf("gemini: %v", err), err)
		return nil, core.ErrSuggestionsUnavailable
	}
	return suggestions, nil
}

// parse reads a JSON array of strings, or an object holding one, optionally fenced in a markdown code block.
func parse(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty answer")
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		var obj struct {
			SuggestedActions []string `json:"suggestedActions"`
		}
		if err2 := json.Unmarshal([]byte(text), &obj); err2 != nil || obj.SuggestedActions == nil {
			return nil, errors.Wrap(err, "decoding answer")
		}
		list = obj.SuggestedActions
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}
