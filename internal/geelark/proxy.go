package geelark

import (
	"context"
	"fmt"
)

// ProxyRecord is a proxy entry in the platform inventory. ID is assigned
// by the platform on creation and required for updates and deletes.
type ProxyRecord struct {
	ID       string `json:"id,omitempty"`
	Scheme   string `json:"scheme"`
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// BatchResult is the per-item breakdown of a bulk operation. A mixed
// outcome is a successful call: callers inspect FailDetails rather than
// receiving an error.
type BatchResult struct {
	TotalAmount   int          `json:"totalAmount"`
	SuccessAmount int          `json:"successAmount"`
	FailAmount    int          `json:"failAmount"`
	FailDetails   []FailDetail `json:"failDetails,omitempty"`
}

// FailDetail names one item of a bulk request the platform rejected.
type FailDetail struct {
	ID    string `json:"id,omitempty"`
	Index int    `json:"index,omitempty"`
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
}

// ProxyAddResult extends the batch breakdown with the ids assigned to
// the records that were created.
type ProxyAddResult struct {
	BatchResult
	SuccessDetails []ProxyCreated `json:"successDetails,omitempty"`
}

// ProxyCreated maps a request index to the platform-assigned proxy id.
type ProxyCreated struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
}

// AddProxies creates up to 100 proxy records. Partial failure is the
// normal case; the result reports both created ids and rejects.
func (c *Client) AddProxies(ctx context.Context, proxies []ProxyRecord) (*ProxyAddResult, error) {
	if err := checkBatch("proxy add", len(proxies)); err != nil {
		return nil, err
	}
	var result ProxyAddResult
	if err := c.do(ctx, "/open/v1/proxy/add", map[string][]ProxyRecord{"list": proxies}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProxies updates up to 100 proxy records in place; every record
// must carry its platform id.
func (c *Client) UpdateProxies(ctx context.Context, proxies []ProxyRecord) (*BatchResult, error) {
	if err := checkBatch("proxy update", len(proxies)); err != nil {
		return nil, err
	}
	for i, p := range proxies {
		if p.ID == "" {
			return nil, fmt.Errorf("geelark: proxy update: record %d missing id", i)
		}
	}
	var result BatchResult
	if err := c.do(ctx, "/open/v1/proxy/update", map[string][]ProxyRecord{"list": proxies}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteProxies removes up to 100 proxy records by id.
func (c *Client) DeleteProxies(ctx context.Context, ids []string) (*BatchResult, error) {
	if err := checkBatch("proxy delete", len(ids)); err != nil {
		return nil, err
	}
	var result BatchResult
	if err := c.do(ctx, "/open/v1/proxy/delete", map[string][]string{"ids": ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProxyListParams pages the proxy inventory.
type ProxyListParams struct {
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	IDs      []string `json:"ids,omitempty"`
}

// ProxyListResult is a page of the proxy inventory.
type ProxyListResult struct {
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	List     []ProxyRecord `json:"list"`
}

// ListProxies pages through the proxy inventory. Pagination defaults are
// applied when omitted; the page size is capped at the protocol limit.
func (c *Client) ListProxies(ctx context.Context, params ProxyListParams) (*ProxyListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = maxBatchSize
	}
	if params.PageSize > maxBatchSize {
		return nil, &ValidationError{Op: "proxy list", Limit: maxBatchSize, Count: params.PageSize}
	}

	var result ProxyListResult
	if err := c.do(ctx, "/open/v1/proxy/list", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
