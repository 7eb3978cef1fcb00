package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	getLatestInscriptionsMaxLimit     = 100
	getLatestInscriptionsDefaultLimit = 20
)

type getLatestInscriptionsRequest struct {
	Limit int32 `query:"limit"`
}

func (r *getLatestInscriptionsRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getLatestInscriptionsMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getLatestInscriptionsMaxLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getLatestInscriptionsResult struct {
	List []inscriptionResponse `json:"list"`
}

type getLatestInscriptionsResponse = common.HttpResponse[getLatestInscriptionsResult]

func (h *HttpHandler) GetLatestInscriptions(ctx *fiber.Ctx) (err error) {
	var req getLatestInscriptionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if req.Limit == 0 {
		req.Limit = getLatestInscriptionsDefaultLimit
	}

	inscriptions, err := h.inscriptionDg.GetLatestInscriptions(ctx.UserContext(), req.Limit)
	if err != nil {
		return errors.Wrap(err, "error during GetLatestInscriptions")
	}

	result := getLatestInscriptionsResult{
		List: lo.Map(inscriptions, func(item *entity.Inscription, _ int) inscriptionResponse {
			return newInscriptionResponse(item)
		}),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getLatestInscriptionsResponse{
		Result: &result,
	}))
}
