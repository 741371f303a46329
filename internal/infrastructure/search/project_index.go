package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/project-tracker/internal/domain/entity"
)

const (
	requestTimeout  = 3 * time.Second
	defaultPageSize = 500
)

// ProjectIndex keeps a searchable copy of projects in Elasticsearch.
// Only ids come back from Search; callers re-read records from Postgres.
type ProjectIndex struct {
	ES        *elasticsearch.Client
	IndexName string

	// PageSize is the number of hits fetched per search request.
	PageSize int
}

func NewProjectIndex(es *elasticsearch.Client, index string) *ProjectIndex {
	return &ProjectIndex{ES: es, IndexName: index}
}

type projectDoc struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Status             string    `json:"status"`
	AssignedTeamMember string    `json:"assignedTeamMember"`
	Deadline           time.Time `json:"deadline"`
	Budget             float64   `json:"budget"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (x *ProjectIndex) Index(ctx context.Context, p *entity.Project) error {
	b, err := json.Marshal(projectDoc{
		ID:                 p.ID,
		Name:               p.Name,
		Status:             string(p.Status),
		AssignedTeamMember: p.AssignedTeamMember,
		Deadline:           p.Deadline,
		Budget:             p.Budget,
		CreatedAt:          p.CreatedAt,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", p.ID, res.Status())
	}
	return nil
}

// Remove deletes a document. A document that is already gone is not an error.
func (x *ProjectIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search returns the ids of every project whose name or assignee contains q,
// ignoring case, newest first. Results are paged with search_after so the
// index window never truncates them.
func (x *ProjectIndex) Search(ctx context.Context, q string, status *entity.ProjectStatus) ([]string, error) {
	pattern := "*" + escapeWildcard(q) + "*"
	boolQuery := map[string]any{
		"should": []any{
			wildcard("name.keyword", pattern),
			wildcard("assignedTeamMember.keyword", pattern),
		},
		"minimum_should_match": 1,
	}
	if status != nil {
		boolQuery["filter"] = map[string]any{
			"term": map[string]any{"status.keyword": string(*status)},
		}
	}

	size := x.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	var (
		ids   []string
		after []any
	)
	for {
		body := map[string]any{
			"query":   map[string]any{"bool": boolQuery},
			"size":    size,
			"sort":    []any{map[string]string{"createdAt": "desc"}, map[string]string{"id.keyword": "asc"}},
			"_source": false,
		}
		if after != nil {
			body["search_after"] = after
		}
		hits, err := x.searchPage(ctx, body)
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
		if len(hits) < size {
			break
		}
		after = hits[len(hits)-1].Sort
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

type searchHit struct {
	ID   string `json:"_id"`
	Sort []any  `json:"sort"`
}

func (x *ProjectIndex) searchPage(ctx context.Context, body map[string]any) ([]searchHit, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Hits.Hits, nil
}

func wildcard(field, pattern string) map[string]any {
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{"value": pattern, "case_insensitive": true},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// escapeWildcard makes q match literally inside a wildcard pattern.
func escapeWildcard(q string) string {
	return wildcardEscaper.Replace(q)
}
