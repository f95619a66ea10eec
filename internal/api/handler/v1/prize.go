package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sorteos-app/sorteos-api/internal/api/handler/v1/request"
	"github.com/sorteos-app/sorteos-api/internal/api/handler/v1/response"
	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/service"
)

type PrizeService interface {
	CreatePrize(ctx context.Context, admin domain.User, prize domain.Prize) (domain.Prize, error)
	ListPrizes(ctx context.Context, raffleID uint) ([]domain.Prize, error)
	EvaluateUnlocks(ctx context.Context, admin domain.User, raffleID uint) ([]domain.Prize, error)
	DesignateWinner(ctx context.Context, admin domain.User, prizeID uint, ticketNumber int) (domain.Prize, error)
}

type PrizeHandler struct {
	svc  PrizeService
	uSvc UserService
}

func NewPrizeHandler(svc PrizeService, uSvc UserService) *PrizeHandler {
	return &PrizeHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListPrizes godoc
// @Summary      List the prizes of a raffle
// @Tags         prizes
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {array}   response.PrizeResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles/{raffleID}/prizes [get]
func (h *PrizeHandler) HandleListPrizes(ctx *gin.Context) {
	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	prizes, err := h.svc.ListPrizes(ctx.Request.Context(), uint(raffleID))
	if err != nil {
		err = fmt.Errorf("v1.HandleListPrizes -> h.svc.ListPrizes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.NewPrizeResponses(prizes))
}

// HandleCreatePrize godoc
// @Summary      Add a progressive prize to a raffle
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        raffleID  path      int                         true  "raffle ID"
// @Param        request   body      request.CreatePrizeRequest  true  "request body"
// @Success      201  {object}  response.PrizeResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/raffles/{raffleID}/prizes [post]
// @Security BearerAuth
func (h *PrizeHandler) HandleCreatePrize(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.CreatePrizeRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	prize, err := h.buildPrize(uint(raffleID), req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	created, err := h.svc.CreatePrize(ctx.Request.Context(), admin, prize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))
		default:
			err = fmt.Errorf("v1.HandleCreatePrize -> h.svc.CreatePrize -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.NewPrizeResponse(created))
}

// HandleEvaluateUnlocks godoc
// @Summary      Re-evaluate prize unlocks for a raffle
// @Description  Approval already evaluates unlocks; this endpoint re-runs the check by hand. It is idempotent.
// @Tags         admin
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {array}   response.PrizeResponse
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/raffles/{raffleID}/prizes/evaluate [post]
// @Security BearerAuth
func (h *PrizeHandler) HandleEvaluateUnlocks(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	unlocked, err := h.svc.EvaluateUnlocks(ctx.Request.Context(), admin, uint(raffleID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))
		default:
			err = fmt.Errorf("v1.HandleEvaluateUnlocks -> h.svc.EvaluateUnlocks -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.NewPrizeResponses(unlocked))
}

// HandleDesignateWinner godoc
// @Summary      Designate the winning ticket of an unlocked prize
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        prizeID  path      int                             true  "prize ID"
// @Param        request  body      request.DesignateWinnerRequest  true  "request body"
// @Success      200  {object}  response.PrizeResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/prizes/{prizeID}/winner [post]
// @Security BearerAuth
func (h *PrizeHandler) HandleDesignateWinner(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	prizeID, err := strconv.ParseUint(ctx.Param("prizeID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.DesignateWinnerRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	prize, err := h.svc.DesignateWinner(ctx.Request.Context(), admin, uint(prizeID), req.TicketNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrPrizeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("prize", "ID", prizeID))
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "number", req.TicketNumber))
		case errors.Is(err, service.ErrPrizeNotUnlocked), errors.Is(err, service.ErrTicketNotSold):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleDesignateWinner -> h.svc.DesignateWinner -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.NewPrizeResponse(prize))
}

func (h *PrizeHandler) buildPrize(raffleID uint, req request.CreatePrizeRequest) (domain.Prize, error) {
	var (
		condition domain.UnlockCondition
		err       error
	)

	switch domain.UnlockMode(req.UnlockMode) {
	case domain.UnlockModeTicketsSold:
		condition, err = domain.UnlockAtTicketsSold(req.UnlockThreshold)
	case domain.UnlockModePercentage:
		condition, err = domain.UnlockAtPercentage(req.UnlockThreshold)
	default:
		err = fmt.Errorf("unknown unlock mode %q", req.UnlockMode)
	}
	if err != nil {
		return domain.Prize{}, err
	}

	var reward domain.Reward
	switch domain.RewardKind(req.RewardKind) {
	case domain.RewardKindCash:
		reward, err = domain.CashReward(req.CashValue)
	case domain.RewardKindProduct:
		reward, err = domain.ProductReward(req.ProductDescription)
	default:
		err = fmt.Errorf("unknown reward kind %q", req.RewardKind)
	}
	if err != nil {
		return domain.Prize{}, err
	}

	return domain.Prize{
		RaffleID:    raffleID,
		Name:        req.Name,
		Description: req.Description,
		Condition:   condition,
		Reward:      reward,
	}, nil
}
