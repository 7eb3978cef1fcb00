package contract

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/pkg/httpclient"
)

// Make sure to implement the Client interface
var _ Client = (*HttpClient)(nil)

// HttpClient talks to a contract-call relay over JSON HTTP. The relay builds,
// signs and broadcasts the underlying transactions.
type HttpClient struct {
	client          *httpclient.Client
	contractAddress string
}

func NewHttpClient(baseURL, contractAddress string) (*HttpClient, error) {
	client, err := httpclient.New(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create http client")
	}
	return &HttpClient{
		client:          client,
		contractAddress: contractAddress,
	}, nil
}

type simulateRequest struct {
	Contract string `json:"contract"`
	Method   string `json:"method"`
	Args     []any  `json:"args"`
}

type simulateResponse struct {
	RevertReason *string `json:"revertReason"`
}

func (c *HttpClient) Simulate(ctx context.Context, method string, args ...any) (Simulation, error) {
	resp, err := c.client.Post(ctx, "/simulate", simulateRequest{
		Contract: c.contractAddress,
		Method:   method,
		Args:     args,
	})
	if err != nil {
		return nil, errors.Wrap(err, "simulate request failed")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errs.Unavailable, "simulate returned status %d", resp.StatusCode)
	}
	var result simulateResponse
	if err := resp.UnmarshalBody(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode simulate response")
	}
	return &httpSimulation{
		client:       c,
		method:       method,
		args:         args,
		revertReason: result.RevertReason,
	}, nil
}

type httpSimulation struct {
	client       *HttpClient
	method       string
	args         []any
	revertReason *string
}

func (s *httpSimulation) Reverted() error {
	if s.revertReason == nil {
		return nil
	}
	return errors.Errorf("contract reverted: %s", *s.revertReason)
}

type sendRequest struct {
	Contract string     `json:"contract"`
	Method   string     `json:"method"`
	Args     []any      `json:"args"`
	Params   CallParams `json:"params"`
}

func (s *httpSimulation) Send(ctx context.Context, params CallParams) (*Receipt, error) {
	if err := s.Reverted(); err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := s.client.client.Post(ctx, "/send", sendRequest{
		Contract: s.client.contractAddress,
		Method:   s.method,
		Args:     s.args,
		Params:   params,
	})
	if err != nil {
		return nil, errors.Wrap(err, "send request failed")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errs.Unavailable, "send returned status %d", resp.StatusCode)
	}
	var receipt Receipt
	if err := resp.UnmarshalBody(&receipt); err != nil {
		return nil, errors.Wrap(err, "failed to decode send response")
	}
	return &receipt, nil
}
