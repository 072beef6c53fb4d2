// internal/evaluation/records/elasticsearch.go
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Index mirrors saved evaluations into Elasticsearch for search.
type Index struct {
	client *elasticsearch.Client
	name   string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{client: client, name: name}
}

func (i *Index) Name() string { return "search-index" }

// OnSubmitted indexes a saved record under its id.
func (i *Index) OnSubmitted(ctx context.Context, record *models.Monitoria, score evaluation.ScoreResult) error {
	record.PontosObtidos = score.AchievedPoints
	record.CriteriosAplicaveis = score.ApplicableCriteriaCount
	record.FalhaCritica = score.IsCriticalFailure
	return i.Put(ctx, record)
}

func (i *Index) Put(ctx context.Context, record *models.Monitoria) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode monitoria %s: %w", record.ID, err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}.Do(ctx, i.client)
	if err != nil {
		return commonerrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return commonerrors.NewSearchQueryFailedError(i.name, fmt.Errorf("index document: %s", res.String()))
	}
	return nil
}

// BuildQuery translates a filter into a bool query, newest first.
func BuildQuery(f Filter) map[string]interface{} {
	var filters []interface{}
	term := func(field, value string) {
		if value != "" {
			filters = append(filters, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}
	term("ticket_number", f.TicketNumber)
	term("analista", f.Analista)
	term("monitor", f.Monitor)
	term("casa", f.Casa)

	if f.From != "" || f.To != "" {
		bounds := map[string]interface{}{}
		if f.From != "" {
			bounds["gte"] = f.From
		}
		if f.To != "" {
			bounds["lte"] = f.To
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"data_atendimento": bounds},
		})
	}
	if f.CriticalFailure != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"falha_critica": *f.CriticalFailure},
		})
	}
	if f.MaxScore != nil {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"nota_final": map[string]interface{}{"lte": *f.MaxScore}},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filters) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		}
	}
	return map[string]interface{}{
		"query": query,
		"sort":  []interface{}{map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}}},
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.Monitoria `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (i *Index) Search(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, error) {
	filter = filter.Normalized()

	body, err := json.Marshal(BuildQuery(filter))
	if err != nil {
		return nil, commonerrors.NewInvalidFilterFormatError(err.Error())
	}
	from, size := filter.offset(), filter.Size

	res, err := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}.Do(ctx, i.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewSearchTimeoutError(i.name)
		}
		return nil, commonerrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, commonerrors.NewIndexNotFoundError(i.name)
	}
	if res.IsError() {
		return nil, commonerrors.NewSearchQueryFailedError(i.name, fmt.Errorf("%s", res.String()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(i.name, err)
	}

	result := &models.MonitoriaSearchResult{
		Total:   parsed.Hits.Total.Value,
		Page:    filter.Page,
		Size:    filter.Size,
		Results: make([]*models.Monitoria, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		record := hit.Source
		result.Results = append(result.Results, &record)
	}
	return result, nil
}
