package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/evmarket/checkout-client/internal/domain"
)

func (c *Client) MyTransactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var tp domain.TransactionPage
	if err := c.do(ctx, call{op: "my_transactions", method: http.MethodGet, path: "/transactions/me", query: q}, &tp); err != nil {
		return nil, err
	}
	return &tp, nil
}
