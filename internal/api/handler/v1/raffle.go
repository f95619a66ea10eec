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

type RaffleService interface {
	CreateRaffle(ctx context.Context, admin domain.User, raffle domain.Raffle) (domain.Raffle, error)
	ActivateRaffle(ctx context.Context, admin domain.User, raffleID uint) (domain.Raffle, error)
	CompleteRaffle(ctx context.Context, admin domain.User, raffleID uint) (domain.Raffle, error)
	GetRaffle(ctx context.Context, id uint) (domain.Raffle, error)
	ListRaffles(ctx context.Context, status domain.RaffleStatus) ([]domain.Raffle, error)
	CreatePackage(ctx context.Context, admin domain.User, pkg domain.PricingPackage) (domain.PricingPackage, error)
	ListPackages(ctx context.Context, raffleID uint, activeOnly bool) ([]domain.PricingPackage, error)
	DeactivatePackage(ctx context.Context, admin domain.User, packageID uint) error
	DeletePackage(ctx context.Context, admin domain.User, packageID uint) error
}

type RaffleHandler struct {
	svc  RaffleService
	uSvc UserService
}

func NewRaffleHandler(svc RaffleService, uSvc UserService) *RaffleHandler {
	return &RaffleHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListRaffles godoc
// @Summary      List raffles
// @Tags         raffles
// @Produce      json
// @Param        status  query     string  false  "filter by status"
// @Success      200  {array}   domain.Raffle
// @Failure      500  {object}  response.Err
// @Router       /raffles [get]
func (h *RaffleHandler) HandleListRaffles(ctx *gin.Context) {
	status := domain.RaffleStatus(ctx.Query("status"))
	if status != "" && !status.IsValid() {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid status %q", status)))

		return
	}

	raffles, err := h.svc.ListRaffles(ctx.Request.Context(), status)
	if err != nil {
		err = fmt.Errorf("v1.HandleListRaffles -> h.svc.ListRaffles -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, raffles)
}

// HandleGetRaffle godoc
// @Summary      Get a raffle
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {object}  domain.Raffle
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles/{raffleID} [get]
func (h *RaffleHandler) HandleGetRaffle(ctx *gin.Context) {
	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	raffle, err := h.svc.GetRaffle(ctx.Request.Context(), uint(raffleID))
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))

			return
		}

		err = fmt.Errorf("v1.HandleGetRaffle -> h.svc.GetRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, raffle)
}

// HandleListPackages godoc
// @Summary      List a raffle's active pricing packages
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {array}   domain.PricingPackage
// @Failure      500  {object}  response.Err
// @Router       /raffles/{raffleID}/packages [get]
func (h *RaffleHandler) HandleListPackages(ctx *gin.Context) {
	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	packages, err := h.svc.ListPackages(ctx.Request.Context(), uint(raffleID), true)
	if err != nil {
		err = fmt.Errorf("v1.HandleListPackages -> h.svc.ListPackages -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, packages)
}

// HandleCreateRaffle godoc
// @Summary      Create a raffle in draft
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRaffleRequest  true  "request body"
// @Success      201  {object}  domain.Raffle
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/raffles [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleCreateRaffle(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.CreateRaffleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	raffle, err := h.svc.CreateRaffle(ctx.Request.Context(), admin, domain.Raffle{
		Name:             req.Name,
		Description:      req.Description,
		TotalTickets:     req.TotalTickets,
		TicketPrice:      req.TicketPrice,
		TaxRate:          req.TaxRate,
		PriceIncludesTax: req.PriceIncludesTax,
		MinPurchase:      req.MinPurchase,
		MaxPurchase:      req.MaxPurchase,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidRaffle):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateRaffle -> h.svc.CreateRaffle -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, raffle)
}

// HandleActivateRaffle godoc
// @Summary      Activate a draft raffle and generate its ticket pool
// @Tags         admin
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {object}  domain.Raffle
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/raffles/{raffleID}/activate [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleActivateRaffle(ctx *gin.Context) {
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

	raffle, err := h.svc.ActivateRaffle(ctx.Request.Context(), admin, uint(raffleID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))
		case errors.Is(err, service.ErrRaffleNotDraft):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleActivateRaffle -> h.svc.ActivateRaffle -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, raffle)
}

// HandleCompleteRaffle godoc
// @Summary      Close an active raffle
// @Tags         admin
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {object}  domain.Raffle
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/raffles/{raffleID}/complete [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleCompleteRaffle(ctx *gin.Context) {
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

	raffle, err := h.svc.CompleteRaffle(ctx.Request.Context(), admin, uint(raffleID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))
		case errors.Is(err, service.ErrRaffleNotComplete):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCompleteRaffle -> h.svc.CompleteRaffle -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, raffle)
}

// HandleCreatePackage godoc
// @Summary      Create a pricing package for a raffle
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        raffleID  path      int                           true  "raffle ID"
// @Param        request   body      request.CreatePackageRequest  true  "request body"
// @Success      201  {object}  domain.PricingPackage
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/raffles/{raffleID}/packages [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleCreatePackage(ctx *gin.Context) {
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

	var req request.CreatePackageRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	pkg, err := h.svc.CreatePackage(ctx.Request.Context(), admin, domain.PricingPackage{
		RaffleID:        uint(raffleID),
		Name:            req.Name,
		Quantity:        req.Quantity,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "ID", raffleID))
		case errors.Is(err, service.ErrInvalidRaffle):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreatePackage -> h.svc.CreatePackage -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, pkg)
}

// HandleDeactivatePackage godoc
// @Summary      Take a pricing package off sale
// @Tags         admin
// @Produce      json
// @Param        packageID  path  int  true  "package ID"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /admin/packages/{packageID}/deactivate [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleDeactivatePackage(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	packageID, err := strconv.ParseUint(ctx.Param("packageID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.svc.DeactivatePackage(ctx.Request.Context(), admin, uint(packageID)); err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrPackageNotFound):
			response.RenderErr(ctx, response.ErrNotFound("package", "ID", packageID))
		default:
			err = fmt.Errorf("v1.HandleDeactivatePackage -> h.svc.DeactivatePackage -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeletePackage godoc
// @Summary      Delete an unreferenced pricing package
// @Tags         admin
// @Produce      json
// @Param        packageID  path  int  true  "package ID"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/packages/{packageID} [delete]
// @Security BearerAuth
func (h *RaffleHandler) HandleDeletePackage(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	packageID, err := strconv.ParseUint(ctx.Param("packageID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.svc.DeletePackage(ctx.Request.Context(), admin, uint(packageID)); err != nil {
		switch {
		case errors.Is(err, service.ErrPermissionDenied):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrPackageNotFound):
			response.RenderErr(ctx, response.ErrNotFound("package", "ID", packageID))
		case errors.Is(err, service.ErrPackageInUse):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleDeletePackage -> h.svc.DeletePackage -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.Status(http.StatusNoContent)
}
