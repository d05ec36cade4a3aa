package ruleindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/text-to-visitor/internal/domain"
)

const (
	nlQueryBoost = 3.0
	ruleIDBoost  = 10.0
	classBoost   = 5.0
)

// Filters narrows a search.
type Filters struct {
	RuleType string
}

// Hit is a single matching rule.
type Hit struct {
	RuleID       string
	RuleType     string
	NLQuery      string
	VisitorClass string
	SuperClass   string
	Score        float64
	Fragments    []string
}

// Result is the outcome of a search.
type Result struct {
	Total uint64
	Hits  []Hit
}

// Searcher runs queries against an open index. It is safe for concurrent use.
type Searcher struct {
	index      bleve.Index
	maxResults int
}

// Close releases the index.
func (s *Searcher) Close() error {
	return s.index.Close()
}

// Search matches text against rule titles and visitor sources. A rule key or
// visitor class name given as the text ranks its rule first.
func (s *Searcher) Search(ctx context.Context, text string, filters Filters) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	req := bleve.NewSearchRequest(buildQuery(text, filters))
	req.Size = s.maxResults
	req.Fields = []string{
		domain.RuleFieldID,
		domain.RuleFieldType,
		domain.RuleFieldNLQuery,
		domain.RuleFieldVisitorClass,
		domain.RuleFieldSuperClass,
	}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(domain.RuleFieldJavaVisitor)

	results, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := &Result{Total: results.Total, Hits: make([]Hit, 0, len(results.Hits))}
	for _, match := range results.Hits {
		hit := Hit{
			RuleID:       fieldString(match.Fields, domain.RuleFieldID),
			RuleType:     fieldString(match.Fields, domain.RuleFieldType),
			NLQuery:      fieldString(match.Fields, domain.RuleFieldNLQuery),
			VisitorClass: fieldString(match.Fields, domain.RuleFieldVisitorClass),
			SuperClass:   fieldString(match.Fields, domain.RuleFieldSuperClass),
			Score:        match.Score,
		}
		if hit.RuleID == "" {
			hit.RuleID = match.ID
		}
		hit.Fragments = match.Fragments[domain.RuleFieldJavaVisitor]
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildQuery constructs a Bleve query from search arguments.
func buildQuery(text string, filters Filters) query.Query {
	text = strings.TrimSpace(text)

	nlQuery := bleve.NewMatchQuery(text)
	nlQuery.SetField(domain.RuleFieldNLQuery)
	nlQuery.SetBoost(nlQueryBoost)

	visitorQuery := bleve.NewMatchQuery(text)
	visitorQuery.SetField(domain.RuleFieldJavaVisitor)

	idQuery := bleve.NewTermQuery(strings.ToUpper(text))
	idQuery.SetField(domain.RuleFieldID)
	idQuery.SetBoost(ruleIDBoost)

	classQuery := bleve.NewTermQuery(text)
	classQuery.SetField(domain.RuleFieldVisitorClass)
	classQuery.SetBoost(classBoost)

	searchQuery := bleve.NewDisjunctionQuery(nlQuery, visitorQuery, idQuery, classQuery)
	if filters.RuleType == "" {
		return searchQuery
	}

	typeQuery := bleve.NewTermQuery(strings.ToUpper(strings.TrimSpace(filters.RuleType)))
	typeQuery.SetField(domain.RuleFieldType)
	return bleve.NewConjunctionQuery(searchQuery, typeQuery)
}

func fieldString(fields map[string]interface{}, name string) string {
	if val, ok := fields[name].(string); ok {
		return val
	}
	return ""
}
