package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

const fluxURL = "https://server.smithery.ai/@falahg/flux-imagegen-mcp-server/mcp"

// ImageClient calls the Flux image-generation service.
type ImageClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewImageClient creates an image-generation client. An empty apiKey is
// allowed; Generate then fails with ErrNotConfigured.
func NewImageClient(apiKey string) *ImageClient {
	return &ImageClient{
		apiKey:     apiKey,
		baseURL:    fluxURL,
		httpClient: newHTTPClient(),
	}
}

type imageRequest struct {
	Tool      string         `json:"tool"`
	Arguments imageArguments `json:"arguments"`
}

type imageArguments struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
	Error    string `json:"error"`
}

// Generate produces an image for the prompt and returns its URL.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(imageRequest{
		Tool:      "generateImageUrl",
		Arguments: imageArguments{Prompt: prompt},
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "?api_key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Image provider returned %d: %s", resp.StatusCode, body)
		return "", fmt.Errorf("image provider returned status %d", resp.StatusCode)
	}

	var data imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode image response: %w", err)
	}
	if data.Error != "" {
		return "", fmt.Errorf("image generation failed: %s", data.Error)
	}
	if data.ImageURL == "" {
		return "", fmt.Errorf("image provider returned no imageUrl")
	}

	return data.ImageURL, nil
}
