package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChromaClient wraps HTTP calls to the ChromaDB v2 API.
// The official Go client lags behind the v2 API, so calls are made directly.
type ChromaClient struct {
	baseURL    string
	rootURL    string
	httpClient *http.Client
}

// ChromaConfig holds configuration for the ChromaDB connection
type ChromaConfig struct {
	Host     string
	Port     int
	Tenant   string // default: "default_tenant"
	Database string // default: "default_database"
	Timeout  time.Duration
}

// Collection represents a ChromaDB collection
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// QueryResponse represents the response from a similarity query.
// Result slices are grouped per query embedding.
type QueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

// NewChromaClient creates a new ChromaDB client with v2 API support
func NewChromaClient(config ChromaConfig) *ChromaClient {
	if config.Tenant == "" {
		config.Tenant = "default_tenant"
	}
	if config.Database == "" {
		config.Database = "default_database"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	rootURL := fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	baseURL := fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s",
		rootURL, config.Tenant, config.Database)

	return &ChromaClient{
		baseURL: baseURL,
		rootURL: rootURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Heartbeat checks if ChromaDB is alive
func (c *ChromaClient) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL+"/api/v2/heartbeat", nil)
	if err != nil {
		return fmt.Errorf("failed to create heartbeat request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat failed with status: %d", resp.StatusCode)
	}

	return nil
}

// CreateCollection creates a new collection, returning the existing one if the
// name is already taken
func (c *ChromaClient) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	payload := map[string]interface{}{
		"name": name,
		"metadata": map[string]interface{}{
			"hnsw:space": "cosine",
		},
		"get_or_create": true,
	}

	var collection Collection
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/collections", payload, &collection); err != nil {
		return nil, fmt.Errorf("create collection failed: %w", err)
	}

	return &collection, nil
}

// GetCollection retrieves a collection by name
func (c *ChromaClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var collection Collection
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/collections/"+name, nil, &collection); err != nil {
		return nil, fmt.Errorf("get collection failed: %w", err)
	}
	return &collection, nil
}

// DeleteCollection deletes a collection and all its embeddings
func (c *ChromaClient) DeleteCollection(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, c.baseURL+"/collections/"+name, nil, nil); err != nil {
		return fmt.Errorf("delete collection failed: %w", err)
	}
	return nil
}

// AddDocuments adds documents with precomputed embeddings to a collection
func (c *ChromaClient) AddDocuments(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
	}
	if metadatas != nil {
		payload["metadatas"] = metadatas
	}

	url := fmt.Sprintf("%s/collections/%s/add", c.baseURL, collection.ID)
	if err := c.do(ctx, http.MethodPost, url, payload, nil); err != nil {
		return fmt.Errorf("add documents failed: %w", err)
	}

	return nil
}

// Query searches a collection for the nearest neighbors of the query embedding
func (c *ChromaClient) Query(ctx context.Context, collectionName string, queryEmbedding []float32, nResults int) (*QueryResponse, error) {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{queryEmbedding},
		"n_results":        nResults,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, collection.ID)

	var queryResp QueryResponse
	if err := c.do(ctx, http.MethodPost, url, payload, &queryResp); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return &queryResp, nil
}

// CountDocuments returns the number of embeddings stored in a collection
func (c *ChromaClient) CountDocuments(ctx context.Context, collectionName string) (int, error) {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection: %w", err)
	}

	var count int
	url := fmt.Sprintf("%s/collections/%s/count", c.baseURL, collection.ID)
	if err := c.do(ctx, http.MethodGet, url, nil, &count); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}

	return count, nil
}

// do performs a JSON request against the Chroma API and decodes the response
// into out when out is non-nil
func (c *ChromaClient) do(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
