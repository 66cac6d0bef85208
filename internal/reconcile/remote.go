package reconcile

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/avialab/toolkiosk/internal/httpx"
)

// Client calls the warehouse service's comparison endpoint. The endpoint is
// optional enrichment: callers fall back to the local Compare on any error.
type Client struct {
	httpClient *resty.Client
}

type ClientOpts struct {
	BaseURL string
}

func NewClient(opts ClientOpts) *Client {
	c := Client{}
	c.httpClient = resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")

	return &c
}

type compareRequest struct {
	UserID        int            `json:"user_id"`
	ToolkitID     int            `json:"toolkit_id"`
	ReturnedTools []ReturnedTool `json:"returned_tools"`
}

// CompareWithIssued asks the warehouse service to compare the returned tools
// against what it recorded as issued.
func (c *Client) CompareWithIssued(ctx context.Context, userID, toolkitID int, returned []ReturnedTool) (ComparisonResult, error) {
	result := &ComparisonResult{}

	_, err := httpx.HandleError(c.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(compareRequest{
			UserID:        userID,
			ToolkitID:     toolkitID,
			ReturnedTools: returned,
		}).
		SetResult(result).
		Post("/return-tools/compare-with-issued"))

	return *result, err
}
