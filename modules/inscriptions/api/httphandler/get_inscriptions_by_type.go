package httphandler

import (
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	getInscriptionsByTypeMaxLimit     = 1000
	getInscriptionsByTypeDefaultLimit = 100
)

type getInscriptionsByTypeRequest struct {
	Mime  string `params:"mime"`
	Limit int32  `query:"limit"`
}

func (r *getInscriptionsByTypeRequest) Validate() error {
	var errList []error
	mime, err := url.QueryUnescape(r.Mime)
	if err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid 'mime'")
	}
	r.Mime = mime
	if r.Mime == "" {
		errList = append(errList, errors.New("'mime' is required"))
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > getInscriptionsByTypeMaxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", getInscriptionsByTypeMaxLimit))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getInscriptionsByTypeResult struct {
	List []inscriptionResponse `json:"list"`
}

type getInscriptionsByTypeResponse = common.HttpResponse[getInscriptionsByTypeResult]

func (h *HttpHandler) GetInscriptionsByType(ctx *fiber.Ctx) (err error) {
	var req getInscriptionsByTypeRequest
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
		req.Limit = getInscriptionsByTypeDefaultLimit
	}

	inscriptions, err := h.inscriptionDg.GetInscriptionsByContentType(ctx.UserContext(), req.Mime, req.Limit)
	if err != nil {
		return errors.Wrap(err, "error during GetInscriptionsByContentType")
	}

	result := getInscriptionsByTypeResult{
		List: lo.Map(inscriptions, func(item *entity.Inscription, _ int) inscriptionResponse {
			return newInscriptionResponse(item)
		}),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getInscriptionsByTypeResponse{
		Result: &result,
	}))
}
