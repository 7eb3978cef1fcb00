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
	getInscriptionsByOwnerMaxLimit     = 1000
	getInscriptionsByOwnerDefaultLimit = 100
)

type getInscriptionsByOwnerRequest struct {
	paginationRequest
	Address string `params:"addr"`
}

func (r *getInscriptionsByOwnerRequest) Validate() error {
	var errList []error
	if r.Address == "" {
		errList = append(errList, errors.New("'addr' is required"))
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getInscriptionsByOwnerMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getInscriptionsByOwnerMaxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getInscriptionsByOwnerResult struct {
	List []inscriptionResponse `json:"list"`
}

type getInscriptionsByOwnerResponse = common.HttpResponse[getInscriptionsByOwnerResult]

func (h *HttpHandler) GetInscriptionsByOwner(ctx *fiber.Ctx) (err error) {
	var req getInscriptionsByOwnerRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if req.Limit == 0 {
		req.Limit = getInscriptionsByOwnerDefaultLimit
	}

	inscriptions, err := h.inscriptionDg.GetInscriptionsByOwner(ctx.UserContext(), req.Address, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetInscriptionsByOwner")
	}

	result := getInscriptionsByOwnerResult{
		List: lo.Map(inscriptions, func(item *entity.Inscription, _ int) inscriptionResponse {
			return newInscriptionResponse(item)
		}),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getInscriptionsByOwnerResponse{
		Result: &result,
	}))
}
