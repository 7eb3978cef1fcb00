package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gofiber/fiber/v2"
)

type getCollectionResult struct {
	Name   string             `json:"name"`
	Symbol string             `json:"symbol"`
	Size   int                `json:"size"`
	Items  []*collection.Item `json:"items"`
}

type getCollectionResponse = common.HttpResponse[getCollectionResult]

func (h *HttpHandler) GetCollection(ctx *fiber.Ctx) (err error) {
	coll := h.bridge.Collection()
	result := getCollectionResult{
		Name:   coll.Name(),
		Symbol: coll.Symbol(),
		Size:   coll.Size(),
		Items:  coll.Items(),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getCollectionResponse{
		Result: &result,
	}))
}
