package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var screeningModels = []string{
	"gemini-2.0-flash-001",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-flash-latest",
}

type GeminiClient struct {
	apiKey  string
	baseURL string
	models  []string
	http    *http.Client
}

// ScreeningResult is the model's verdict on how well an applicant fits a job.
type ScreeningResult struct {
	MatchScore float64 `json:"match_score"`
	Notes      string  `json:"notes"`
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		models:  screeningModels,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ScreenApplication asks Gemini to rate a candidate against a job posting.
// Models are tried in order until one returns parseable JSON.
func (g *GeminiClient) ScreenApplication(ctx context.Context, job, candidate string) (*ScreeningResult, error) {
	prompt := fmt.Sprintf(
		`You are screening applicants for a developer job board.

Job Posting:
%s

Candidate:
%s

Assess technical skills match, experience level and relevant achievements.

Return strict JSON with structure:
{
  "match_score": float,
  "notes": string
}

IMPORTANT: match_score is between 0 and 1, notes is at most three sentences. Return ONLY the raw JSON without any markdown formatting, code blocks, or additional text.`, job, candidate)

	log := C("gemini")
	var lastError error
	for _, model := range g.models {
		response, err := g.callGeminiWithModel(ctx, prompt, model)
		if err == nil {
			result, err := parseScreeningResult(response)
			if err == nil {
				log.WithField("model", model).Debug("screening succeeded")
				return result, nil
			}
			lastError = err
		} else {
			lastError = err
		}
		log.WithError(lastError).WithField("model", model).Warn("screening model failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("all models failed: %w", lastError)
}

func parseScreeningResult(response map[string]interface{}) (*ScreeningResult, error) {
	score, ok := response["match_score"].(float64)
	if !ok {
		return nil, fmt.Errorf("match_score missing from response")
	}
	if score > 1 && score <= 100 {
		score /= 100
	}
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("match_score out of range: %v", score)
	}
	notes, _ := response["notes"].(string)
	return &ScreeningResult{MatchScore: score, Notes: strings.TrimSpace(notes)}, nil
}

func (g *GeminiClient) callGeminiWithModel(ctx context.Context, prompt string, model string) (map[string]interface{}, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"text": prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.1,
			"topP":        0.8,
			"topK":        40,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResponse map[string]interface{}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	text, err := extractTextFromResponse(apiResponse)
	if err != nil {
		return nil, err
	}

	cleanedContent := cleanJSONResponse(text)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleanedContent), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return result, nil
}

func extractTextFromResponse(apiResponse map[string]interface{}) (string, error) {
	candidates, ok := apiResponse["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	firstCandidate, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid candidate format")
	}
	content, ok := firstCandidate["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid content format")
	}

	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("no parts in content")
	}

	firstPart, ok := parts[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid part format")
	}
	text, ok := firstPart["text"].(string)
	if !ok {
		return "", fmt.Errorf("no text in part")
	}

	return text, nil
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		content = content[start : end+1]
	}

	return strings.TrimSpace(content)
}
