package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// extractionSchema is the fixed two-field schema sent with every request,
// using the GLiNER2 "field::type::description" syntax.
var extractionSchema = map[string][]string{
	"ingredients": {
		"name::str::Ingredient name or food item",
		"quantity::str::Approximate quantity like 'half an avocado' or '2 slices'",
	},
}

// APIExtractor calls a GLiNER2-compatible extraction API.
type APIExtractor struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAPIExtractor(baseURL, apiKey, model string, httpClient *http.Client) *APIExtractor {
	return &APIExtractor{baseURL: baseURL, apiKey: apiKey, model: model, httpClient: httpClient}
}

// APIFactory returns a Factory producing API-backed extractors.
func APIFactory(baseURL, apiKey, model string, httpClient *http.Client) Factory {
	return func(_ context.Context) (Extractor, error) {
		if apiKey == "" {
			return nil, fmt.Errorf("%w: api key is empty", ErrUnavailable)
		}
		return NewAPIExtractor(baseURL, apiKey, model, httpClient), nil
	}
}

type extractRequest struct {
	Model  string              `json:"model"`
	Text   string              `json:"text"`
	Schema map[string][]string `json:"schema"`
}

// fieldText accepts either a bare JSON string or an object with a "text"
// key; the API returns both shapes depending on the model version.
type fieldText string

func (f *fieldText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = fieldText(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*f = fieldText(obj.Text)
	return nil
}

type extractResponse struct {
	Ingredients []struct {
		Name     fieldText `json:"name"`
		Quantity fieldText `json:"quantity"`
	} `json:"ingredients"`
}

// Extract posts the text plus the fixed schema and decodes the extracted
// name/quantity pairs.
func (e *APIExtractor) Extract(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(extractRequest{Model: e.model, Text: text, Schema: extractionSchema})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction api status %d: %s", resp.StatusCode, string(raw))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("extraction api decode: %w", err)
	}

	entities := make([]Entity, 0, len(out.Ingredients))
	for _, ing := range out.Ingredients {
		entities = append(entities, Entity{Name: string(ing.Name), Quantity: string(ing.Quantity)})
	}
	return entities, nil
}

// Close is a no-op; the API extractor holds no resources beyond the shared
// HTTP client.
func (e *APIExtractor) Close() error { return nil }
