package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	router.Get("/inscription/:id", h.GetInscription)
	router.Get("/content/:id", h.GetContent)
	router.Get("/inscriptions/owner/:addr", h.GetInscriptionsByOwner)
	router.Get("/inscriptions/latest", h.GetLatestInscriptions)
	router.Get("/inscriptions/type/:mime", h.GetInscriptionsByType)
	router.Get("/stats", h.GetStats)
	return nil
}
