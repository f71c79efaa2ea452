package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/akozharin/music-store/internal/models"
)

// Search runs a fuzzy multi-field query over the instrument index and
// returns the total hit count with the matched documents.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Instrument, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "brand"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.String())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Instrument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	instruments := make([]models.Instrument, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		instruments[i] = hit.Source
	}
	return r.Hits.Total.Value, instruments, nil
}

// IndexInstrument upserts one instrument document keyed by its row id.
func IndexInstrument(ctx context.Context, es *elasticsearch.Client, index string, inst *models.Instrument) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("index instrument: %w", err)
	}
	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.Itoa(inst.ID)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index instrument: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index instrument: %s", res.String())
	}
	return nil
}

// DeleteInstrument removes an instrument document; a missing document is
// not an error.
func DeleteInstrument(ctx context.Context, es *elasticsearch.Client, index string, id int) error {
	res, err := es.Delete(
		index,
		strconv.Itoa(id),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete instrument: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete instrument: %s", res.String())
	}
	return nil
}
