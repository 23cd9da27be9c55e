package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

const (
	minScriptChars = 20
	maxScriptChars = 150
)

// Script is a generated narration package for one video.
type Script struct {
	Topic    string
	Title    string
	Body     string
	Keywords []string
}

// scriptResponse is the structured output contract for the LLM call.
type scriptResponse struct {
	Title    string `json:"title" jsonschema_description:"A short, engaging Japanese title for the video, under 50 characters"`
	Script   string `json:"script" jsonschema_description:"The Japanese narration script, natural spoken style, 20 to 150 characters, suited to about 30 seconds of speech"`
	Keywords string `json:"keywords" jsonschema_description:"Comma-separated English search keywords describing visual imagery for the topic, 2 to 3 terms"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

var scriptResponseSchema = GenerateSchema[scriptResponse]()

// Generator produces narration scripts from topics via the OpenAI chat API.
type Generator struct {
	client        openai.Client
	targetSeconds int
}

func NewGenerator(apiKey string, targetSeconds int) *Generator {
	return &Generator{
		client:        openai.NewClient(option.WithAPIKey(apiKey)),
		targetSeconds: targetSeconds,
	}
}

// Generate asks the model for a title, narration script and visual search
// keywords for the topic, enforcing the structured output schema.
func (g *Generator) Generate(ctx context.Context, topic string) (*Script, error) {
	const op = "script.Generate"

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperr.Errorf(apperr.KindScriptMalformed, op, "topic is empty")
	}

	prompt := fmt.Sprintf(`あなたは短編ナレーション動画の放送作家です。
トピック「%s」について、約%d秒の動画ナレーション原稿を作成してください。

要件:
- script: 日本語の話し言葉で自然に読める文章。%d文字から%d文字の範囲で、約%d秒の音声に収まる長さにする
- title: 50文字以内の魅力的な日本語タイトル
- keywords: トピックの映像素材を検索するための英単語をカンマ区切りで2〜3語

JSON形式で回答してください。`,
		topic, g.targetSeconds, minScriptChars, maxScriptChars, g.targetSeconds)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "narration_script",
		Description: openai.String("A narration script package for a short video"),
		Schema:      scriptResponseSchema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4oMini,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}

	if len(chatCompletion.Choices) == 0 {
		return nil, apperr.Errorf(apperr.KindScriptMalformed, op, "no response from model")
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return nil, apperr.Errorf(apperr.KindScriptMalformed, op,
			"model returned empty response, finish reason: %s", chatCompletion.Choices[0].FinishReason)
	}

	var resp scriptResponse
	if err := json.Unmarshal([]byte(rawResponse), &resp); err != nil {
		return nil, apperr.Errorf(apperr.KindScriptMalformed, op,
			"unparseable model response: %v", err)
	}

	script := &Script{
		Topic:    topic,
		Title:    strings.TrimSpace(resp.Title),
		Body:     strings.TrimSpace(resp.Script),
		Keywords: splitKeywords(resp.Keywords),
	}
	if err := script.validate(); err != nil {
		return nil, err
	}
	return script, nil
}

func (s *Script) validate() error {
	const op = "script.Generate"
	if s.Title == "" {
		return apperr.Errorf(apperr.KindScriptMalformed, op, "model returned empty title")
	}
	n := len([]rune(s.Body))
	if n < minScriptChars || n > maxScriptChars {
		return apperr.Errorf(apperr.KindScriptMalformed, op,
			"script length %d characters, want %d to %d", n, minScriptChars, maxScriptChars)
	}
	return nil
}

func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// classifyAPIError distinguishes credential and quota failures from
// transient API problems.
func classifyAPIError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperr.Errorf(apperr.KindScriptAuth, op, "API key rejected: %v", err)
		case http.StatusTooManyRequests:
			return apperr.Errorf(apperr.KindScriptQuota, op, "API quota exceeded: %v", err)
		}
	}
	return apperr.E(apperr.KindScriptMalformed, op, fmt.Errorf("OpenAI API error: %w", err))
}
