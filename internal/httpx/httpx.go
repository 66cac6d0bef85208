// Package httpx carries helpers shared by the resty-based service clients.
package httpx

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// HandleError folds a transport failure and an error-status response (>399)
// into a single error value. Without this, failing responses would have nil
// error.
func HandleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
