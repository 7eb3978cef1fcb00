package httphandler

import (
	"github.com/gaze-network/ordbridge/modules/bridge"
)

type HttpHandler struct {
	bridge *bridge.Service
}

func New(bridge *bridge.Service) *HttpHandler {
	return &HttpHandler{bridge: bridge}
}
