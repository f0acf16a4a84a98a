package openrouter

import "encoding/json"

// Params are the sampling parameters sent with a request. Nil fields are
// omitted.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// merge returns p with every non-nil field of o applied on top.
func (p Params) merge(o Params) Params {
	if o.Temperature != nil {
		p.Temperature = o.Temperature
	}
	if o.MaxTokens != nil {
		p.MaxTokens = o.MaxTokens
	}
	if o.TopP != nil {
		p.TopP = o.TopP
	}
	if o.FrequencyPenalty != nil {
		p.FrequencyPenalty = o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		p.PresencePenalty = o.PresencePenalty
	}
	return p
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// DefaultParams are used when Config.Params is nil.
func DefaultParams() Params {
	return Params{
		Temperature:      Float(0.7),
		MaxTokens:        Int(150),
		TopP:             Float(1),
		FrequencyPenalty: Float(0.3),
		PresencePenalty:  Float(0.3),
	}
}

// JSONSchema names a schema the model output must follow.
type JSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict,omitempty"`
}

// ResponseFormat is the response_format field of a request.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// ChatOptions override the client defaults for one request.
type ChatOptions struct {
	Model          string
	Params         Params
	ResponseFormat *ResponseFormat
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Params
	ResponseFormat *ResponseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatResponse is the document described by the default chat_response
// schema.
type ChatResponse struct {
	Reply string `json:"reply"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func defaultResponseFormat() *ResponseFormat {
	return &ResponseFormat{
		Type: "json_schema",
		JSONSchema: &JSONSchema{
			Name: "chat_response",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reply": map[string]any{
						"type":        "string",
						"description": "The response text",
					},
					"usage": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"prompt_tokens": map[string]any{
								"type":        "number",
								"description": "Number of tokens in the prompt",
							},
							"completion_tokens": map[string]any{
								"type":        "number",
								"description": "Number of tokens in the completion",
							},
						},
						"required": []string{"prompt_tokens", "completion_tokens"},
					},
				},
				"required": []string{"reply", "usage"},
			},
		},
	}
}
