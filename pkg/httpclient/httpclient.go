package httpclient

import (
	"context"
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	// Enable debug mode
	Debug bool

	// Default headers
	Headers map[string]string

	// Per-request timeout, defaults to 30s
	Timeout time.Duration
}

type Client struct {
	baseURL *url.URL
	Config
}

func New(baseURL string, config ...Config) (*Client, error) {
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse base url")
	}
	var cf Config
	if len(config) > 0 {
		cf = config[0]
	}
	if cf.Timeout <= 0 {
		cf.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: parsedBaseURL,
		Config:  cf,
	}, nil
}

type RequestOptions struct {
	path   string
	method string
	Body   []byte
	Query  url.Values
	Header map[string]string
}

type HttpResponse struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (r *HttpResponse) UnmarshalBody(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Wrapf(err, "can't unmarshal json body from %s, %q", r.URL, string(r.Body))
	}
	return nil
}

func (h *Client) Get(ctx context.Context, requestPath string, options ...RequestOptions) (*HttpResponse, error) {
	opts := firstOrZero(options)
	opts.path = requestPath
	opts.method = fasthttp.MethodGet
	return h.request(ctx, opts)
}

func (h *Client) Post(ctx context.Context, requestPath string, body any, options ...RequestOptions) (*HttpResponse, error) {
	opts := firstOrZero(options)
	opts.path = requestPath
	opts.method = fasthttp.MethodPost
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "can't marshal request body")
		}
		opts.Body = raw
	}
	return h.request(ctx, opts)
}

func (h *Client) request(ctx context.Context, reqOptions RequestOptions) (*HttpResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseResponse(resp)
		fasthttp.ReleaseRequest(req)
	}()

	req.Header.SetMethod(reqOptions.method)
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range reqOptions.Header {
		req.Header.Set(k, v)
	}

	parsedUrl := *h.baseURL
	parsedUrl.Path = path.Join(parsedUrl.Path, reqOptions.path)
	parsedUrl.RawQuery = reqOptions.Query.Encode()
	url := strings.TrimSuffix(parsedUrl.String(), "%20")
	req.SetRequestURI(url)

	if reqOptions.Body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(reqOptions.Body)
	}

	start := time.Now()
	if err := fasthttp.DoTimeout(req, resp, h.Timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, errors.Wrapf(errs.Timeout, "request timed out after %s, url: %s", h.Timeout, url)
		}
		return nil, errors.Wrapf(err, "url: %s", url)
	}
	if h.Debug {
		logger.DebugContext(ctx, "Finished make request",
			slogx.String("package", "httpclient"),
			slogx.String("method", reqOptions.method),
			slogx.String("url", url),
			slogx.Int("status_code", resp.StatusCode()),
			slogx.Duration("latency", time.Since(start)),
		)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &HttpResponse{
		URL:        url,
		StatusCode: resp.StatusCode(),
		Body:       body,
	}, nil
}

func firstOrZero(options []RequestOptions) RequestOptions {
	if len(options) > 0 {
		return options[0]
	}
	return RequestOptions{}
}
