package request

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/ledger.bank-accounts/pkg/lib-core-golang/diag"
)

var defaultLogger = diag.CreateLogger()

type sendCfg struct {
	logger  diag.Logger
	client  *http.Client
	headers http.Header
}

// SendOpt is a send specific option
type SendOpt func(cfg *sendCfg)

// WithLogger will log the request using given logger
func WithLogger(logger diag.Logger) SendOpt {
	return func(cfg *sendCfg) {
		cfg.logger = logger
	}
}

// WithClient will send the request using given client
func WithClient(client *http.Client) SendOpt {
	return func(cfg *sendCfg) {
		cfg.client = client
	}
}

// WithHeader adds a header to the request
func WithHeader(key, value string) SendOpt {
	return func(cfg *sendCfg) {
		cfg.headers.Add(key, value)
	}
}

// ReqFactory is a function that creates an instance of a request
type ReqFactory func(ctx context.Context) (*http.Request, error)

// Get creates a factory of GET requests to given url
func Get(url string) ReqFactory {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

// Post creates a factory of POST requests to given url.
// Body is sent as JSON unless it is nil
func Post(url string, body interface{}) ReqFactory {
	return func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, errors.Wrap(err, "Failed to marshal request body")
			}
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("content-type", "application/json")
		}
		return req, nil
	}
}

// ResFactory is a function that holds a request result with a response or error
type ResFactory func() (*http.Response, error)

// ReadAll will read entire body as a byte array
func (f ResFactory) ReadAll() ([]byte, error) {
	res, err := f()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return ioutil.ReadAll(res.Body)
}

// DecodeJSON will decode the body into the receiver
func (f ResFactory) DecodeJSON(receiver interface{}) error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(receiver); err != nil {
		return errors.Wrap(err, "Failed to decode response body")
	}
	return nil
}

// Discard will drain and close the body
func (f ResFactory) Discard() error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = io.Copy(ioutil.Discard, res.Body)
	return err
}

func newResFactory(res *http.Response, err error) ResFactory {
	return func() (*http.Response, error) {
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= 300 {
			defer res.Body.Close()
			return nil, NewHTTPErrorFromResponse(res)
		}
		return res, nil
	}
}

// Do will send the request. Responses with status other than 2xx
// are returned as *HTTPError
func Do(ctx context.Context, factory ReqFactory, opts ...SendOpt) ResFactory {
	cfg := sendCfg{
		logger:  defaultLogger,
		client:  &http.Client{Transport: http.DefaultTransport},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	req, err := factory(ctx)
	if err != nil {
		return newResFactory(nil, err)
	}
	for key, values := range cfg.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if requestID := diag.RequestIDValue(ctx); requestID != "" && req.Header.Get("x-request-id") == "" {
		req.Header.Set("x-request-id", requestID)
	}

	startedAt := time.Now()
	res, err := cfg.client.Do(req)
	if err != nil {
		cfg.logger.WithError(err).Warn(ctx, "%v %v failed", req.Method, req.URL)
		return newResFactory(nil, err)
	}
	cfg.logger.
		WithData(diag.MsgData{"duration": time.Since(startedAt).Seconds()}).
		Debug(ctx, "%v %v: %v", req.Method, req.URL, res.StatusCode)
	return newResFactory(res, nil)
}
