package httphandler

import (
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/modules/inscriptions/datagateway"
)

type HttpHandler struct {
	inscriptionDg datagateway.InscriptionDataGateway
	network       common.Network
}

func New(network common.Network, inscriptionDg datagateway.InscriptionDataGateway) *HttpHandler {
	return &HttpHandler{
		inscriptionDg: inscriptionDg,
		network:       network,
	}
}
