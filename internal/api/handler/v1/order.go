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

type OrderService interface {
	Checkout(ctx context.Context, user domain.User, items []service.CheckoutItem, paymentMethod string) (domain.Order, error)
	GetOrder(ctx context.Context, user domain.User, orderID uint) (domain.Order, error)
	ListUserOrders(ctx context.Context, userID uint) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, admin domain.User, status domain.OrderStatus) ([]domain.Order, error)
	SubmitReceipt(ctx context.Context, user domain.User, orderID uint, receiptURL string) (domain.Order, error)
	Approve(ctx context.Context, admin domain.User, orderID uint, paymentReference string) (domain.Order, error)
	Reject(ctx context.Context, admin domain.User, orderID uint, reason string) (domain.Order, error)
	Complete(ctx context.Context, admin domain.User, orderID uint) (domain.Order, error)
	Cancel(ctx context.Context, user domain.User, orderID uint) (domain.Order, error)
	ListOrderTickets(ctx context.Context, user domain.User, orderID uint) ([]domain.Ticket, error)
	ListUserRaffleTickets(ctx context.Context, user domain.User, raffleID uint) ([]domain.Ticket, error)
	Dashboard(ctx context.Context, admin domain.User) (service.DashboardStats, error)
}

type CheckoutService interface {
	ProbeEmail(ctx context.Context, email string) (service.CheckoutBranch, error)
	ResolveIdentity(ctx context.Context, authenticatedID uint, details service.CustomerDetails, password string) (domain.User, error)
}

type OrderHandler struct {
	svc         OrderService
	checkoutSvc CheckoutService
	uSvc        UserService
}

func NewOrderHandler(svc OrderService, checkoutSvc CheckoutService, uSvc UserService) *OrderHandler {
	return &OrderHandler{
		svc:         svc,
		checkoutSvc: checkoutSvc,
		uSvc:        uSvc,
	}
}

// HandleProbeEmail godoc
// @Summary      Report which checkout branch an email falls into
// @Description  Returns "new_account" when the email is unknown and "existing_account" when it is registered.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request  body      request.ProbeEmailRequest  true  "request body"
// @Success      200  {object}  response.ProbeEmailResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /checkout/probe [post]
func (h *OrderHandler) HandleProbeEmail(ctx *gin.Context) {
	var req request.ProbeEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	branch, err := h.checkoutSvc.ProbeEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		err = fmt.Errorf("v1.HandleProbeEmail -> h.checkoutSvc.ProbeEmail -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.ProbeEmailResponse{Branch: string(branch)})
}

// HandleCheckout godoc
// @Summary      Create an order in pending_payment
// @Description  Guests are resolved by email: unknown emails create a customer account with the supplied password, known emails must present the matching password. Authenticated callers skip resolution.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request  body      request.CheckoutRequest  true  "request body"
// @Success      201  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /checkout [post]
func (h *OrderHandler) HandleCheckout(ctx *gin.Context) {
	var req request.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.checkoutSvc.ResolveIdentity(ctx.Request.Context(), authenticatedUserID(ctx), service.CustomerDetails{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		NationalID: req.NationalID,
	}, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRequired):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserNotActive):
			response.RenderErr(ctx, response.ErrWrongCredentials(err))
		default:
			err = fmt.Errorf("v1.HandleCheckout -> h.checkoutSvc.ResolveIdentity -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	items := make([]service.CheckoutItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CheckoutItem{
			RaffleID:  item.RaffleID,
			PackageID: item.PackageID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.svc.Checkout(ctx.Request.Context(), user, items, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "items", req.Items))
		case errors.Is(err, service.ErrPackageNotFound):
			response.RenderErr(ctx, response.ErrNotFound("package", "items", req.Items))
		case errors.Is(err, service.ErrRaffleNotActive),
			errors.Is(err, service.ErrPackageInactive),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrPackageNotInRaffle),
			errors.Is(err, service.ErrEmptyOrder):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCheckout -> h.svc.Checkout -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// HandleListMyOrders godoc
// @Summary      List the authenticated user's orders
// @Tags         orders
// @Produce      json
// @Success      200  {array}   domain.Order
// @Failure      401  {object}  response.Err
// @Router       /orders [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListMyOrders(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orders, err := h.svc.ListUserOrders(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyOrders -> h.svc.ListUserOrders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetOrder godoc
// @Summary      Get one order
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "order ID"
// @Success      200  {object}  domain.Order
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/{orderID} [get]
// @Security BearerAuth
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.GetOrder(ctx.Request.Context(), user, uint(orderID))
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleGetOrder")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleListOrderTickets godoc
// @Summary      List the tickets allocated to an order
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "order ID"
// @Success      200  {array}   domain.Ticket
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/{orderID}/tickets [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListOrderTickets(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	tickets, err := h.svc.ListOrderTickets(ctx.Request.Context(), user, uint(orderID))
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleListOrderTickets")

		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleListMyRaffleTickets godoc
// @Summary      List the authenticated user's tickets in a raffle
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int  true  "raffle ID"
// @Success      200  {array}   domain.Ticket
// @Failure      401  {object}  response.Err
// @Router       /raffles/{raffleID}/my-tickets [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListMyRaffleTickets(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	raffleID, err := strconv.ParseUint(ctx.Param("raffleID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	tickets, err := h.svc.ListUserRaffleTickets(ctx.Request.Context(), user, uint(raffleID))
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyRaffleTickets -> h.svc.ListUserRaffleTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleSubmitReceipt godoc
// @Summary      Attach a payment receipt to an order
// @Description  Moves the order from pending_payment to pending_verification.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                           true  "order ID"
// @Param        request  body      request.SubmitReceiptRequest  true  "request body"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /orders/{orderID}/receipt [post]
// @Security BearerAuth
func (h *OrderHandler) HandleSubmitReceipt(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.SubmitReceiptRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.SubmitReceipt(ctx.Request.Context(), user, uint(orderID), req.ReceiptURL)
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleSubmitReceipt")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCancelOrder godoc
// @Summary      Cancel a pre-approval order
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "order ID"
// @Success      200  {object}  domain.Order
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /orders/{orderID}/cancel [post]
// @Security BearerAuth
func (h *OrderHandler) HandleCancelOrder(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.Cancel(ctx.Request.Context(), user, uint(orderID))
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleCancelOrder")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleListOrders godoc
// @Summary      List orders by status
// @Tags         admin
// @Produce      json
// @Param        status  query     string  true  "order status"
// @Success      200  {array}   domain.Order
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Router       /admin/orders [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListOrders(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	status := domain.OrderStatus(ctx.Query("status"))
	if !status.IsValid() {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid status %q", status)))

		return
	}

	orders, err := h.svc.ListOrdersByStatus(ctx.Request.Context(), admin, status)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))

			return
		}

		err = fmt.Errorf("v1.HandleListOrders -> h.svc.ListOrdersByStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleApproveOrder godoc
// @Summary      Approve an order and allocate its tickets
// @Description  The status flip, the ticket allocation and the prize unlock evaluation commit in one transaction.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                          true  "order ID"
// @Param        request  body      request.ApproveOrderRequest  true  "request body"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/orders/{orderID}/approve [post]
// @Security BearerAuth
func (h *OrderHandler) HandleApproveOrder(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.ApproveOrderRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.Approve(ctx.Request.Context(), admin, uint(orderID), req.PaymentReference)
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleApproveOrder")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleRejectOrder godoc
// @Summary      Reject an order under verification
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                         true  "order ID"
// @Param        request  body      request.RejectOrderRequest  true  "request body"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/orders/{orderID}/reject [post]
// @Security BearerAuth
func (h *OrderHandler) HandleRejectOrder(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.RejectOrderRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.Reject(ctx.Request.Context(), admin, uint(orderID), req.Reason)
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleRejectOrder")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCompleteOrder godoc
// @Summary      Mark an approved order as completed
// @Tags         admin
// @Produce      json
// @Param        orderID  path      int  true  "order ID"
// @Success      200  {object}  domain.Order
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /admin/orders/{orderID}/complete [post]
// @Security BearerAuth
func (h *OrderHandler) HandleCompleteOrder(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := strconv.ParseUint(ctx.Param("orderID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.Complete(ctx.Request.Context(), admin, uint(orderID))
	if err != nil {
		h.renderOrderErr(ctx, err, orderID, "HandleCompleteOrder")

		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleDashboard godoc
// @Summary      Sales dashboard aggregates
// @Tags         admin
// @Produce      json
// @Success      200  {object}  service.DashboardStats
// @Failure      403  {object}  response.Err
// @Router       /admin/dashboard [get]
// @Security BearerAuth
func (h *OrderHandler) HandleDashboard(ctx *gin.Context) {
	admin, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	stats, err := h.svc.Dashboard(ctx.Request.Context(), admin)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))

			return
		}

		err = fmt.Errorf("v1.HandleDashboard -> h.svc.Dashboard -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func (h *OrderHandler) renderOrderErr(ctx *gin.Context, err error, orderID uint64, op string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
	case errors.Is(err, service.ErrNotOrderOwner), errors.Is(err, service.ErrPermissionDenied):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInsufficientTickets):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, domain.ErrMissingPaymentReference),
		errors.Is(err, domain.ErrMissingRejectionReason),
		errors.Is(err, domain.ErrMissingReceiptURL):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
