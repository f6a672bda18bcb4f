package strapi

import (
	"context"
	"encoding/json"
	"net/http"

	"brewhaha/internal/domain"
)

const brandsQuery = `query {
  brands {
    id
    name
    description
    image { url }
  }
}`

const searchBrandsQuery = `query SearchBrands($term: String!) {
  brands(where: { name_contains: $term }) {
    id
    name
    description
    image { url }
  }
}`

const brandQuery = `query Brand($id: ID!) {
  brand(id: $id) {
    id
    name
    description
    image { url }
    brews {
      id
      name
      description
      price
      image { url }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) graphql(ctx context.Context, op, query string, vars map[string]any, out any) error {
	var resp graphqlResponse
	if err := c.do(ctx, op, http.MethodPost, "/graphql", graphqlRequest{Query: query, Variables: vars}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return &domain.RemoteRequestError{Op: op, StatusCode: http.StatusOK, Message: resp.Errors[0].Message}
	}
	if len(resp.Data) == 0 {
		return &domain.RemoteRequestError{Op: op, StatusCode: http.StatusOK, Message: "empty response"}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &domain.RemoteRequestError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	return nil
}

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	var data struct {
		Brands []domain.Brand `json:"brands"`
	}
	if err := c.graphql(ctx, "list brands", brandsQuery, nil, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Brands), nil
}

// SearchBrands lists brands whose name contains term.
func (c *Client) SearchBrands(ctx context.Context, term string) ([]domain.Brand, error) {
	var data struct {
		Brands []domain.Brand `json:"brands"`
	}
	if err := c.graphql(ctx, "search brands", searchBrandsQuery, map[string]any{"term": term}, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Brands), nil
}

// Brand fetches a brand with its brews. Unknown ids yield domain.ErrNotFound.
func (c *Client) Brand(ctx context.Context, id string) (*domain.Brand, error) {
	var data struct {
		Brand *domain.Brand `json:"brand"`
	}
	if err := c.graphql(ctx, "get brand", brandQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Brand == nil {
		return nil, domain.ErrNotFound
	}
	return data.Brand, nil
}

func nonNil(brands []domain.Brand) []domain.Brand {
	if brands == nil {
		return []domain.Brand{}
	}
	return brands
}
