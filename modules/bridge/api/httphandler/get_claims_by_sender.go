package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	getClaimsBySenderMaxLimit     = 1000
	getClaimsBySenderDefaultLimit = 100
)

type getClaimsBySenderRequest struct {
	Address string `params:"addr"`
	Limit   int32  `query:"limit"`
	Offset  int32  `query:"offset"`
}

func (r *getClaimsBySenderRequest) Validate() error {
	var errList []error
	if r.Address == "" {
		errList = append(errList, errors.New("'addr' is required"))
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getClaimsBySenderMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getClaimsBySenderMaxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getClaimsBySenderResult struct {
	List []claimResponse `json:"list"`
}

type getClaimsBySenderResponse = common.HttpResponse[getClaimsBySenderResult]

func (h *HttpHandler) GetClaimsBySender(ctx *fiber.Ctx) (err error) {
	var req getClaimsBySenderRequest
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
		req.Limit = getClaimsBySenderDefaultLimit
	}

	claims, err := h.bridge.GetClaimsBySender(ctx.UserContext(), req.Address, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetClaimsBySender")
	}

	result := getClaimsBySenderResult{
		List: lo.Map(claims, func(item *entity.BurnClaim, _ int) claimResponse {
			return h.newClaimResponse(item)
		}),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getClaimsBySenderResponse{
		Result: &result,
	}))
}
