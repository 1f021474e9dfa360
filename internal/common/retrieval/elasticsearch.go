// internal/common/retrieval/elasticsearch.go
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchLookup runs a match query on the content field of the
// corpus index and returns the top hits in score order.
type ElasticsearchLookup struct {
	client  *elasticsearch.Client
	corpora map[string]string
	logger  Logger
}

func NewElasticsearchLookup(client *elasticsearch.Client, corpora map[string]string, log Logger) *ElasticsearchLookup {
	return &ElasticsearchLookup{client: client, corpora: corpora, logger: log}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				Content string `json:"content"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (l *ElasticsearchLookup) Search(ctx context.Context, query string, corpus Corpus, k int) (string, error) {
	index, err := indexFor(l.corpora, corpus)
	if err != nil {
		return "", err
	}
	k = normalizeK(k)

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": query,
			},
		},
		"size":    k,
		"_source": []string{"content"},
	}
	body, err := json.Marshal(queryBody)
	if err != nil {
		return "", fmt.Errorf("encode search: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, l.client)
	if err != nil {
		return "", fmt.Errorf("elasticsearch search on %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("elasticsearch search on %s failed: %s", index, res.Status())
	}

	var r esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	passages := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		passages = append(passages, hit.Source.Content)
	}

	l.logger.Debug("corpus search completed", map[string]interface{}{
		"corpus": string(corpus),
		"index":  index,
		"hits":   len(passages),
	})

	return joinPassages(passages), nil
}
