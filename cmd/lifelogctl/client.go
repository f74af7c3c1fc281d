package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// newClient builds a resty client aimed at the service base URL. The API key
// header is attached only when a key is provided.
func newClient(baseURL, apiKey string) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return c
}

// checkStatus turns non-2xx responses into errors carrying the server body.
func checkStatus(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func doGet(path string) ([]byte, error) {
	return checkStatus(newClient(apiFlag, keyFlag).R().Get(path))
}

func doPostJSON(path string, payload interface{}) ([]byte, error) {
	return checkStatus(newClient(apiFlag, keyFlag).R().SetBody(payload).Post(path))
}

func doPatchJSON(path string, payload interface{}) ([]byte, error) {
	return checkStatus(newClient(apiFlag, keyFlag).R().SetBody(payload).Patch(path))
}

func doDelete(path string) ([]byte, error) {
	return checkStatus(newClient(apiFlag, keyFlag).R().Delete(path))
}
