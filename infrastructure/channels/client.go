package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	domainJob "github.com/moveline/leadgate/domains/job"
)

const defaultHTTPTimeout = 15 * time.Second

var httpClient = &fasthttp.Client{
	ReadTimeout:         defaultHTTPTimeout,
	WriteTimeout:        defaultHTTPTimeout,
	MaxConnsPerHost:     64,
	MaxIdleConnDuration: time.Minute,
}

// doRequest runs a prepared fasthttp request honoring the context
// deadline. The returned body is a copy, safe to keep after release.
func doRequest(ctx context.Context, req *fasthttp.Request) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultHTTPTimeout)
	}
	if err := httpClient.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}

func postJSON(ctx context.Context, url string, headers map[string]string, body []byte) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)
	return doRequest(ctx, req)
}

func postForm(ctx context.Context, url string, headers map[string]string, form *fasthttp.Args) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	form.WriteTo(req.BodyWriter())
	return doRequest(ctx, req)
}

func getURL(ctx context.Context, url string, headers map[string]string) (int, []byte, string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := ctx.Err(); err != nil {
		return 0, nil, "", err
	}
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultHTTPTimeout)
	}
	if err := httpClient.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, "", err
	}
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, string(resp.Header.ContentType()), nil
}

func statusError(provider string, status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	err := fmt.Errorf("%s API returned HTTP %d: %s", provider, status, snippet)
	// A 4xx answers the same on every retry; only rate limits and request
	// timeouts are worth another attempt.
	if status >= 400 && status < 500 && status != fasthttp.StatusTooManyRequests && status != fasthttp.StatusRequestTimeout {
		return domainJob.Permanent(err)
	}
	return err
}
