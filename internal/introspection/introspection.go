package introspection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Query is the full GraphQL introspection query.
const Query = `
query IntrospectSchema {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      ...FullType
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args {
      ...InputValue
    }
    type {
      ...TypeRef
    }
    isDeprecated
    deprecationReason
  }
  inputFields {
    ...InputValue
  }
  interfaces {
    ...TypeRef
  }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes {
    ...TypeRef
  }
}

fragment InputValue on __InputValue {
  name
  description
  type {
    ...TypeRef
  }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}
`

// Parse decodes raw introspection JSON into a Schema. Both the response
// envelope ({"data":{"__schema":…}}) and the bare form ({"__schema":…})
// that some tools write to disk are accepted.
func Parse(raw []byte) (*Schema, error) {
	var envelope Result
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode introspection result: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("introspection error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data.Schema.Types) > 0 {
		return &envelope.Data.Schema, nil
	}

	var bare Data
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("failed to decode introspection result: %w", err)
	}
	if len(bare.Schema.Types) > 0 {
		return &bare.Schema, nil
	}

	return nil, fmt.Errorf("introspection result carries no __schema")
}

// Fetch runs the introspection query against a GraphQL endpoint.
func Fetch(ctx context.Context, endpoint string, timeout time.Duration) (*Schema, error) {
	reqBody, err := json.Marshal(map[string]string{
		"query": Query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal introspection query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspection request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("introspection returned status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read introspection response: %w", err)
	}

	return Parse(raw)
}
