package geelark

import "context"

// Cloud phone status codes as reported by the platform.
const (
	PhoneStatusRunning  = 0
	PhoneStatusStarting = 1
	PhoneStatusStopped  = 2
)

// Phone is a cloud-phone record owned by the automation platform. The
// client only reads it; mutation happens through platform-side operations.
type Phone struct {
	ID         string         `json:"id"`
	SerialName string         `json:"serialName"`
	SerialNo   string         `json:"serialNo"`
	Status     int            `json:"status"`
	Remark     string         `json:"remark,omitempty"`
	Proxy      *ProxyRecord   `json:"proxy,omitempty"`
	Equipment  *EquipmentInfo `json:"equipmentInfo,omitempty"`
	Group      *PhoneGroup    `json:"group,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

// EquipmentInfo describes the rented device hardware and locale profile.
type EquipmentInfo struct {
	CountryName string `json:"countryName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	IMEI        string `json:"imei,omitempty"`
	OSVersion   string `json:"osVersion,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// PhoneGroup is the platform-side grouping a phone belongs to.
type PhoneGroup struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// PhoneListParams filters and pages the cloud-phone inventory listing.
// Zero Page and PageSize fall back to page 1 with the maximum page size.
type PhoneListParams struct {
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	IDs        []string `json:"ids,omitempty"`
	SerialName string   `json:"serialName,omitempty"`
	GroupID    string   `json:"groupId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// PhoneListResult is a page of the cloud-phone inventory.
type PhoneListResult struct {
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Items    []Phone `json:"items"`
}

// ListPhones queries the cloud-phone inventory. Pagination defaults are
// applied when omitted; the page size is capped at the protocol limit.
func (c *Client) ListPhones(ctx context.Context, params PhoneListParams) (*PhoneListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = maxBatchSize
	}
	if params.PageSize > maxBatchSize {
		return nil, &ValidationError{Op: "phone list", Limit: maxBatchSize, Count: params.PageSize}
	}

	var result PhoneListResult
	if err := c.do(ctx, "/open/v1/phone/list", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
