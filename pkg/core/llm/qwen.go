package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// QwenProvider calls Alibaba's DashScope text-generation API.
type QwenProvider struct{}

var _ Provider = (*QwenProvider)(nil)

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

func (p *QwenProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("DASHSCOPE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("QWEN_API_KEY")
	}
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("QWEN_API_KEY_MISSING: set DASHSCOPE_API_KEY or QWEN_API_KEY")
	}

	model := "qwen-max"
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := map[string]interface{}{
		"model": model,
		"input": map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": prompt},
			},
		},
		"parameters": map[string]interface{}{
			"result_format": "message",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qwen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
		bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create qwen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("qwen API call failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read qwen response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("QWEN_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response qwenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode qwen response: %w", err)
	}
	if len(response.Output.Choices) == 0 {
		return "", fmt.Errorf("QWEN_EMPTY_RESPONSE: no choices returned")
	}
	return response.Output.Choices[0].Message.Content, nil
}
