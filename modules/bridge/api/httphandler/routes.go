package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/bridge")

	r.Get("/stats", h.GetStats)
	r.Get("/claim/:id", h.GetClaim)
	r.Get("/claims/sender/:addr", h.GetClaimsBySender)
	r.Get("/collection", h.GetCollection)
	r.Get("/collection/check/:id", h.CheckCollectionItem)
	r.Get("/collection/token/:tokenId", h.GetCollectionToken)
	r.Post("/retry-failed", h.RetryFailed)
	return nil
}
