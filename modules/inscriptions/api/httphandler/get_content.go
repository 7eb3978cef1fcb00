package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gofiber/fiber/v2"
)

const defaultContentType = "application/octet-stream"

// GetContent serves the raw inscription content. Content is immutable once
// indexed, so clients may cache it forever.
func (h *HttpHandler) GetContent(ctx *fiber.Ctx) (err error) {
	id := ctx.Params("id")
	if id == "" {
		return errs.NewPublicError("'id' is required")
	}

	inscription, err := h.inscriptionDg.GetInscriptionById(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(errs.NotFound)
		}
		return errors.Wrap(err, "error during GetInscriptionById")
	}

	contentType := inscription.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return errors.WithStack(ctx.Status(http.StatusOK).Send(inscription.Content))
}
