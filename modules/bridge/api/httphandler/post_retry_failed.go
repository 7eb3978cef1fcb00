package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gofiber/fiber/v2"
)

type retryFailedResult struct {
	Retried int64 `json:"retried"`
}

type retryFailedResponse = common.HttpResponse[retryFailedResult]

// RetryFailed flips every failed claim back to confirmed; the next worker
// cycle re-attempts them.
func (h *HttpHandler) RetryFailed(ctx *fiber.Ctx) (err error) {
	retried, err := h.bridge.RetryFailed(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during RetryFailed")
	}

	result := retryFailedResult{Retried: retried}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(retryFailedResponse{
		Result: &result,
	}))
}
