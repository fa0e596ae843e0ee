// Package subgraph queries the protocol's Graph Protocol deployment for
// token inventories and retirement history.
package subgraph

import (
	"context"
	"fmt"

	"github.com/thea-protocol/thea-sdk-go/pkg/httpapi"
)

// Client runs GraphQL queries against the protocol subgraph.
type Client struct {
	api *httpapi.Client
}

func New(api *httpapi.Client) *Client {
	return &Client{api: api}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// TokenInfo describes an ERC-1155 credit-batch token tracked by the subgraph.
type TokenInfo struct {
	ID            string `json:"id"`
	TokenID       string `json:"tokenId"`
	ProjectID     string `json:"projectId"`
	Vintage       int    `json:"vintage"`
	ActiveAmount  string `json:"activeAmount"`
	MintedAmount  string `json:"mintedAmount"`
	RetiredAmount string `json:"retiredAmount"`
	URI           string `json:"uri"`
}

// Retirement is a completed offset recorded by the subgraph.
type Retirement struct {
	ID          string `json:"id"`
	TokenID     string `json:"tokenId"`
	Amount      string `json:"amount"`
	Beneficiary string `json:"by"`
	Timestamp   string `json:"timestamp"`
}

const tokenListQuery = `query {
  tokens(orderBy: tokenId) {
    id tokenId projectId vintage activeAmount mintedAmount retiredAmount uri
  }
}`

const tokenInfoQuery = `query ($tokenId: String!) {
  tokens(where: {tokenId: $tokenId}) {
    id tokenId projectId vintage activeAmount mintedAmount retiredAmount uri
  }
}`

const offsetHistoryQuery = `query ($by: String!) {
  retirements(where: {by: $by}, orderBy: timestamp, orderDirection: desc) {
    id tokenId amount by timestamp
  }
}`

// TokenList returns every credit-batch token known to the subgraph.
func (c *Client) TokenList(ctx context.Context) ([]TokenInfo, error) {
	var resp struct {
		Data struct {
			Tokens []TokenInfo `json:"tokens"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	if err := c.query(ctx, tokenListQuery, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("subgraph: %s", resp.Errors[0].Message)
	}
	return resp.Data.Tokens, nil
}

// TokenInfo returns the subgraph record for a single token ID, or nil when
// the subgraph has no such token.
func (c *Client) TokenInfo(ctx context.Context, tokenID string) (*TokenInfo, error) {
	var resp struct {
		Data struct {
			Tokens []TokenInfo `json:"tokens"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	vars := map[string]interface{}{"tokenId": tokenID}
	if err := c.query(ctx, tokenInfoQuery, vars, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("subgraph: %s", resp.Errors[0].Message)
	}
	if len(resp.Data.Tokens) == 0 {
		return nil, nil
	}
	return &resp.Data.Tokens[0], nil
}

// OffsetHistory returns the retirements initiated by the given account,
// newest first. Address matching on the subgraph is lower-case.
func (c *Client) OffsetHistory(ctx context.Context, account string) ([]Retirement, error) {
	var resp struct {
		Data struct {
			Retirements []Retirement `json:"retirements"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	vars := map[string]interface{}{"by": account}
	if err := c.query(ctx, offsetHistoryQuery, vars, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("subgraph: %s", resp.Errors[0].Message)
	}
	return resp.Data.Retirements, nil
}

func (c *Client) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	req := graphQLRequest{Query: query, Variables: vars}
	return c.api.Post(ctx, "", req, nil, out)
}
