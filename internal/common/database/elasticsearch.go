// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"formquali-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// MonitoriasMapping indexes the searchable fields of a submitted evaluation.
// Answer maps are stored but not indexed.
const MonitoriasMapping = `{
  "mappings": {
    "properties": {
      "id":                   {"type": "keyword"},
      "ticket_number":        {"type": "keyword"},
      "ticket_link":          {"type": "keyword", "index": false},
      "tabulacao":            {"type": "text"},
      "casa":                 {"type": "keyword"},
      "data_atendimento":     {"type": "date", "format": "yyyy-MM-dd||strict_date_optional_time", "ignore_malformed": true},
      "monitor":              {"type": "keyword"},
      "analista":             {"type": "keyword"},
      "nota_final":           {"type": "float"},
      "pontos_obtidos":       {"type": "integer"},
      "criterios_aplicaveis": {"type": "integer"},
      "falha_critica":        {"type": "boolean"},
      "created_at":           {"type": "date"},
      "respostas_checklist":  {"type": "object", "enabled": false},
      "respostas_ncg":        {"type": "object", "enabled": false},
      "experiencia_cliente":  {"type": "object", "enabled": false}
    }
  }
}`

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates index with mapping unless it already exists.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
