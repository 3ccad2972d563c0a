package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrNotConfigured = errors.New("gemini API key is required")

type IGemini interface {
	GenerateAdvice(ctx context.Context, event, risk, precaution string) (string, error)
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) GenerateAdvice(ctx context.Context, event, risk, precaution string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.2)

	res, err := model.GenerateContent(ctx, genai.Text(AdvicePrompt(event, risk, precaution)))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	var out strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if out.Len() == 0 {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return strings.TrimSpace(out.String()), nil
}

func AdvicePrompt(event, risk, precaution string) string {
	return fmt.Sprintf(`A video monitoring system observed the following event in a person's video.
Event: %s
Risk: %s
Recommended precaution: %s

Write short, calm first-aid guidance for a caregiver responding to this event.
Use at most five numbered steps in plain text. Always tell the caregiver to call
emergency services if the person is unresponsive or seriously hurt.`, event, risk, precaution)
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
