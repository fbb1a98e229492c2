package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chittrack/internal/core"
	"chittrack/internal/log"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini generates insights through the Generative Language REST API. The
// response schema pins the model to the Insight JSON shape.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

var _ Generator = (*Gemini)(nil)

func NewGemini(apiKey, model string, logger *log.Logger) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.WithComponent(log.ComponentInsight),
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var insightSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"summary": {"type": "STRING"},
		"risks": {"type": "ARRAY", "items": {"type": "STRING"}},
		"advice": {"type": "ARRAY", "items": {"type": "STRING"}}
	},
	"required": ["summary", "risks", "advice"]
}`)

func (g *Gemini) Generate(ctx context.Context, snap core.Snapshot, overview core.Overview) (Insight, error) {
	prompt, err := buildPrompt(snap, overview)
	if err != nil {
		return Insight{}, fmt.Errorf("build prompt: %w", err)
	}

	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   insightSchema,
		},
	})
	if err != nil {
		return Insight{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return Insight{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Insight{}, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Insight{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.WarnContext(ctx, "model call failed",
			log.FieldStatusCode, resp.StatusCode)
		return Insight{}, fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Insight{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Insight{}, fmt.Errorf("empty model response")
	}

	var out Insight
	if err := json.Unmarshal([]byte(parsed.Candidates[0].Content.Parts[0].Text), &out); err != nil {
		return Insight{}, fmt.Errorf("decode insight: %w", err)
	}
	if out.Summary == "" {
		return Insight{}, fmt.Errorf("insight missing summary")
	}
	return out, nil
}

func buildPrompt(snap core.Snapshot, overview core.Overview) (string, error) {
	state, err := json.Marshal(struct {
		Config   core.GroupConfig `json:"config"`
		Overview core.Overview    `json:"overview"`
		Members  int              `json:"memberCount"`
	}{snap.Config, overview, len(snap.Members)})
	if err != nil {
		return "", err
	}
	return "You are a financial assistant for a rotating savings group. " +
		"Analyze the following state and respond with a concise summary, " +
		"a list of risks, and a list of advice items for the administrator. " +
		"All amounts are in rupees.\n\n" + string(state), nil
}
