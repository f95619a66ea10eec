package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/notification"
	"github.com/sorteos-app/sorteos-api/internal/pkg/ordernumber"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

var (
	ErrOrderNotFound       = repository.ErrOrderNotFound
	ErrInsufficientTickets = repository.ErrInsufficientTickets
	ErrInvalidTransition   = domain.ErrInvalidTransition
	ErrRaffleNotFound      = repository.ErrRaffleNotFound
	ErrPackageNotFound     = repository.ErrPackageNotFound
	ErrRaffleNotActive     = errors.New("raffle is not active")
	ErrPackageInactive     = errors.New("pricing package is not active")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrNotOrderOwner       = errors.New("order does not belong to this user")
	ErrPermissionDenied    = errors.New("permission denied")
)

const (
	orderNumberPrefix = "ORD-"

	// How many fresh numbers to try when the unique index reports a clash.
	orderNumberRetries = 3
)

// Authorizer is the single capability check consumed by every admin-gated
// operation.
type Authorizer interface {
	Authorize(user domain.User, action, resource string) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Order, error)
	FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	SubmitReceipt(ctx context.Context, orderID uint, receiptURL string) error
	Approve(ctx context.Context, orderID, adminID uint, paymentReference string, now time.Time) error
	Reject(ctx context.Context, orderID, adminID uint, reason string, now time.Time) error
	Complete(ctx context.Context, orderID uint) error
	Cancel(ctx context.Context, orderID uint) error
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	RevenueTotal(ctx context.Context) (decimal.Decimal, error)
}

type OrderRaffleRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
	FindPackageByID(ctx context.Context, id uint) (domain.PricingPackage, error)
	SalesSummary(ctx context.Context) ([]domain.RaffleSales, error)
}

type OrderTicketRepository interface {
	FindByOrderID(ctx context.Context, orderID uint) ([]domain.Ticket, error)
	FindByUserAndRaffle(ctx context.Context, userID, raffleID uint) ([]domain.Ticket, error)
}

// CheckoutItem is one raffle selection in a checkout request. PackageID
// selects a fixed bundle; when nil, Quantity is a custom purchase.
type CheckoutItem struct {
	RaffleID  uint
	PackageID *uint
	Quantity  int
}

type OrderService struct {
	repo       OrderRepository
	raffleRepo OrderRaffleRepository
	ticketRepo OrderTicketRepository
	pricing    *PricingService
	numbers    ordernumber.Generator
	authz      Authorizer
	notifier   notification.Notifier
}

func NewOrderService(
	repo OrderRepository,
	raffleRepo OrderRaffleRepository,
	ticketRepo OrderTicketRepository,
	pricing *PricingService,
	numbers ordernumber.Generator,
	authz Authorizer,
	notifier notification.Notifier,
) *OrderService {
	return &OrderService{
		repo:       repo,
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		pricing:    pricing,
		numbers:    numbers,
		authz:      authz,
		notifier:   notifier,
	}
}

// Checkout creates an order in pending_payment for the resolved user.
// Every line is validated and priced server-side; the customer contact
// fields are copied onto the order so later user edits never rewrite
// history. No ticket is touched here.
func (s *OrderService) Checkout(ctx context.Context, user domain.User, items []CheckoutItem, paymentMethod string) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}

	var (
		total      domain.Quote
		orderItems []domain.OrderItem
	)

	for _, item := range items {
		raffle, err := s.raffleRepo.FindByID(ctx, item.RaffleID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
		}
		if !raffle.IsActive() {
			return domain.Order{}, ErrRaffleNotActive
		}

		line, quote, err := s.priceItem(ctx, raffle, item)
		if err != nil {
			return domain.Order{}, err
		}

		total = total.Add(quote)
		orderItems = append(orderItems, line)
	}

	order := domain.Order{
		OrderNumber:   s.numbers.Generate(orderNumberPrefix),
		UserID:        user.ID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		CustomerDocID: user.NationalID,
		Subtotal:      total.Subtotal,
		TaxAmount:     total.TaxAmount,
		Total:         total.Total,
		Status:        domain.OrderStatusPendingPayment,
		PaymentMethod: paymentMethod,
		Items:         orderItems,
	}

	// The order number's time-based suffix can collide under bursts; the
	// unique index reports that and a fresh number resolves it.
	for attempt := 0; ; attempt++ {
		created, err := s.repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrOrderNumberExists) || attempt == orderNumberRetries {
			return domain.Order{}, fmt.Errorf("s.repo.Create -> %w", err)
		}

		order.OrderNumber = s.numbers.Generate(orderNumberPrefix)
	}
}

func (s *OrderService) priceItem(ctx context.Context, raffle domain.Raffle, item CheckoutItem) (domain.OrderItem, domain.Quote, error) {
	if item.PackageID == nil {
		quote, err := s.pricing.QuoteCustom(raffle, item.Quantity)
		if err != nil {
			return domain.OrderItem{}, domain.Quote{}, err
		}

		return domain.OrderItem{
			RaffleID:  raffle.ID,
			Quantity:  item.Quantity,
			UnitPrice: raffle.TicketPrice,
			Subtotal:  quote.Subtotal,
		}, quote, nil
	}

	pkg, err := s.raffleRepo.FindPackageByID(ctx, *item.PackageID)
	if err != nil {
		return domain.OrderItem{}, domain.Quote{}, fmt.Errorf("s.raffleRepo.FindPackageByID -> %w", err)
	}
	if !pkg.IsActive {
		return domain.OrderItem{}, domain.Quote{}, ErrPackageInactive
	}

	quote, err := s.pricing.QuotePackage(raffle, pkg)
	if err != nil {
		return domain.OrderItem{}, domain.Quote{}, err
	}

	return domain.OrderItem{
		RaffleID:  raffle.ID,
		PackageID: &pkg.ID,
		Quantity:  pkg.Quantity,
		// Package lines carry the bundle price; Subtotal is authoritative.
		UnitPrice: pkg.Price,
		Subtotal:  quote.Subtotal,
	}, quote, nil
}

func (s *OrderService) GetOrder(ctx context.Context, user domain.User, orderID uint) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if order.UserID != user.ID {
		allowed, err := s.authz.Authorize(user, "list", "orders")
		if err != nil {
			return domain.Order{}, err
		}
		if !allowed {
			return domain.Order{}, ErrNotOrderOwner
		}
	}

	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint) ([]domain.Order, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) ListOrdersByStatus(ctx context.Context, admin domain.User, status domain.OrderStatus) ([]domain.Order, error) {
	if err := s.authorize(admin, "list", "orders"); err != nil {
		return nil, err
	}

	orders, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatus -> %w", err)
	}

	return orders, nil
}

// SubmitReceipt records the customer's payment receipt and moves the order
// to pending_verification.
func (s *OrderService) SubmitReceipt(ctx context.Context, user domain.User, orderID uint, receiptURL string) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if order.UserID != user.ID {
		return domain.Order{}, ErrNotOrderOwner
	}

	// Validate the transition in memory first; the conditional update below
	// re-checks the status so a concurrent transition cannot slip through.
	if err = order.SubmitReceipt(receiptURL); err != nil {
		return domain.Order{}, err
	}

	if err = s.repo.SubmitReceipt(ctx, orderID, receiptURL); err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.SubmitReceipt -> %w", err)
	}

	return s.repo.FindByID(ctx, orderID)
}

// Approve confirms payment and allocates tickets. Allocation and the status
// flip commit in one storage transaction; on insufficient inventory nothing
// is persisted and the order stays where it was.
func (s *OrderService) Approve(ctx context.Context, admin domain.User, orderID uint, paymentReference string) (domain.Order, error) {
	if err := s.authorize(admin, "approve", "orders"); err != nil {
		return domain.Order{}, err
	}
	if paymentReference == "" {
		return domain.Order{}, domain.ErrMissingPaymentReference
	}

	if err := s.repo.Approve(ctx, orderID, admin.ID, paymentReference, time.Now()); err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.notifyOutcome(ctx, order)

	return order, nil
}

// Reject declines an order under verification. Tickets were never touched,
// so there is nothing to release.
func (s *OrderService) Reject(ctx context.Context, admin domain.User, orderID uint, reason string) (domain.Order, error) {
	if err := s.authorize(admin, "reject", "orders"); err != nil {
		return domain.Order{}, err
	}
	if reason == "" {
		return domain.Order{}, domain.ErrMissingRejectionReason
	}

	if err := s.repo.Reject(ctx, orderID, admin.ID, reason, time.Now()); err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	s.notifyOutcome(ctx, order)

	return order, nil
}

func (s *OrderService) Complete(ctx context.Context, admin domain.User, orderID uint) (domain.Order, error) {
	if err := s.authorize(admin, "complete", "orders"); err != nil {
		return domain.Order{}, err
	}

	if err := s.repo.Complete(ctx, orderID); err != nil {
		return domain.Order{}, err
	}

	return s.repo.FindByID(ctx, orderID)
}

// Cancel voids a pre-approval order. The owner may cancel their own order;
// anyone else needs the cancel capability.
func (s *OrderService) Cancel(ctx context.Context, user domain.User, orderID uint) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if order.UserID != user.ID {
		if err = s.authorize(user, "cancel", "orders"); err != nil {
			return domain.Order{}, err
		}
	}

	if err = order.Cancel(); err != nil {
		return domain.Order{}, err
	}

	if err = s.repo.Cancel(ctx, orderID); err != nil {
		return domain.Order{}, err
	}

	return s.repo.FindByID(ctx, orderID)
}

func (s *OrderService) ListOrderTickets(ctx context.Context, user domain.User, orderID uint) ([]domain.Ticket, error) {
	if _, err := s.GetOrder(ctx, user, orderID); err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("s.ticketRepo.FindByOrderID -> %w", err)
	}

	return tickets, nil
}

// ListUserRaffleTickets lists the caller's own tickets within one raffle.
func (s *OrderService) ListUserRaffleTickets(ctx context.Context, user domain.User, raffleID uint) ([]domain.Ticket, error) {
	tickets, err := s.ticketRepo.FindByUserAndRaffle(ctx, user.ID, raffleID)
	if err != nil {
		return nil, fmt.Errorf("s.ticketRepo.FindByUserAndRaffle -> %w", err)
	}

	return tickets, nil
}

// DashboardStats is the admin reporting aggregate. Reads take no locks and
// are eventually consistent with in-flight approvals.
type DashboardStats struct {
	OrdersByStatus map[domain.OrderStatus]int64 `json:"orders_by_status"`
	Revenue        decimal.Decimal              `json:"revenue"`
	RaffleSales    []domain.RaffleSales         `json:"raffle_sales"`
}

func (s *OrderService) Dashboard(ctx context.Context, admin domain.User) (DashboardStats, error) {
	if err := s.authorize(admin, "read", "dashboard"); err != nil {
		return DashboardStats{}, err
	}

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("s.repo.CountByStatus -> %w", err)
	}

	revenue, err := s.repo.RevenueTotal(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("s.repo.RevenueTotal -> %w", err)
	}

	sales, err := s.raffleRepo.SalesSummary(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("s.raffleRepo.SalesSummary -> %w", err)
	}

	return DashboardStats{
		OrdersByStatus: byStatus,
		Revenue:        revenue,
		RaffleSales:    sales,
	}, nil
}

func (s *OrderService) authorize(user domain.User, action, resource string) error {
	allowed, err := s.authz.Authorize(user, action, resource)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}

	return nil
}

// notifyOutcome announces an approval or rejection. Delivery is best-effort
// and never fails the transition that already committed.
func (s *OrderService) notifyOutcome(ctx context.Context, order domain.Order) {
	event := notification.Event{
		OrderNumber:    order.OrderNumber,
		RecipientName:  order.CustomerName,
		RecipientEmail: order.CustomerEmail,
		Total:          order.Total,
	}

	switch order.Status {
	case domain.OrderStatusApproved:
		event.Kind = notification.EventOrderApproved

		tickets, err := s.ticketRepo.FindByOrderID(ctx, order.ID)
		if err != nil {
			zap.L().Warn("failed to load tickets for notification",
				zap.Error(err), zap.String("order_number", order.OrderNumber))
		}
		for _, ticket := range tickets {
			event.TicketNumbers = append(event.TicketNumbers, ticket.TicketNumber)
		}
	case domain.OrderStatusRejected:
		event.Kind = notification.EventOrderRejected
		event.Reason = order.RejectionReason
	default:
		return
	}

	if err := s.notifier.Notify(ctx, event); err != nil {
		zap.L().Warn("failed to deliver order notification",
			zap.Error(err),
			zap.String("kind", string(event.Kind)),
			zap.String("order_number", order.OrderNumber),
		)
	}
}
