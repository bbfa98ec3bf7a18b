package opensearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// indexDefinition declares the incident index: a French analyzer chain for
// all free text and a strict datetime format matching what the reindexer
// writes.
const indexDefinition = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "filter": {
        "french_elision": {
          "type": "elision",
          "articles_case": true,
          "articles": ["l", "m", "t", "qu", "n", "s", "j", "d", "c", "jusqu", "quoiqu", "lorsqu", "puisqu"]
        },
        "french_stop": {
          "type": "stop",
          "stopwords": "_french_"
        },
        "french_stemmer": {
          "type": "stemmer",
          "language": "light_french"
        }
      },
      "analyzer": {
        "french_analyzer": {
          "tokenizer": "standard",
          "filter": ["french_elision", "lowercase", "asciifolding", "french_stop", "french_stemmer"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "event_id": {"type": "integer"},
      "type": {"type": "keyword"},
      "classification": {"type": "keyword"},
      "description": {"type": "text", "analyzer": "french_analyzer"},
      "start_datetime": {"type": "date", "format": "yyyy-MM-dd'T'HH:mm:ss"},
      "end_datetime": {"type": "date", "format": "yyyy-MM-dd'T'HH:mm:ss"},
      "full_text_search": {"type": "text", "analyzer": "french_analyzer"},
      "organizational_unit": {
        "properties": {
          "unit_id": {"type": "integer"},
          "name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
          "location": {"type": "text"},
          "identifier": {"type": "keyword"}
        }
      },
      "declared_by": {
        "properties": {
          "person_id": {"type": "integer"},
          "name": {"type": "text"},
          "family_name": {"type": "text"},
          "matricule": {"type": "keyword"}
        }
      },
      "risks": {
        "properties": {
          "risk_id": {"type": "integer"},
          "name": {"type": "text", "analyzer": "french_analyzer"},
          "gravity": {"type": "keyword"},
          "probability": {"type": "keyword"}
        }
      },
      "corrective_measures": {
        "properties": {
          "measure_id": {"type": "integer"},
          "name": {"type": "text", "analyzer": "french_analyzer"},
          "description": {"type": "text", "analyzer": "french_analyzer"},
          "cost": {"type": "float"},
          "owner_name": {"type": "text"}
        }
      },
      "involved_employees": {
        "properties": {
          "person_id": {"type": "integer"},
          "name": {"type": "text"},
          "family_name": {"type": "text"},
          "matricule": {"type": "keyword"},
          "involvement_type": {"type": "keyword"}
        }
      }
    }
  }
}`

// RecreateIndex drops and recreates the incident index. A missing index on
// delete is not an error; first-run reindexing starts from nothing.
func (c *Client) RecreateIndex(ctx context.Context) error {
	if err := c.do(ctx, "DELETE", "/"+c.index, nil, nil, http.StatusNotFound); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}

	var definition map[string]any
	if err := json.Unmarshal([]byte(indexDefinition), &definition); err != nil {
		return fmt.Errorf("parse index definition: %w", err)
	}
	if err := c.do(ctx, "PUT", "/"+c.index, definition, nil); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (c *Client) IndexEvent(ctx context.Context, doc domain.EventDocument) error {
	path := fmt.Sprintf("/%s/_doc/%d", c.index, doc.EventID)
	if err := c.do(ctx, "PUT", path, doc, nil); err != nil {
		return fmt.Errorf("index event %d: %w", doc.EventID, err)
	}
	return nil
}

func (c *Client) Refresh(ctx context.Context) error {
	if err := c.do(ctx, "POST", fmt.Sprintf("/%s/_refresh", c.index), nil, nil); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	return nil
}

func (c *Client) CountDocuments(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "GET", fmt.Sprintf("/%s/_count", c.index), nil, &resp); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return resp.Count, nil
}
