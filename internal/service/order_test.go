package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/notification"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

func newOrderService(repo *mockOrderRepo, raffleRepo *mockRaffleRepo, ticketRepo *mockTicketRepo, authz Authorizer, notifier notification.Notifier) *OrderService {
	return NewOrderService(
		repo,
		raffleRepo,
		ticketRepo,
		NewPricingService(),
		fixedNumbers{number: "20260101000000000001"},
		authz,
		notifier,
	)
}

func activeRaffle() domain.Raffle {
	r := testRaffle()
	r.Status = domain.RaffleStatusActive

	return r
}

func customer() domain.User {
	return domain.User{
		ID:         5,
		Email:      "maria@example.com",
		Name:       "Maria",
		Phone:      "555-0001",
		NationalID: "V-12345678",
		Role:       domain.RoleCustomer,
		Status:     domain.UserStatusActive,
	}
}

func admin() domain.User {
	return domain.User{ID: 9, Role: domain.RoleAdmin, Status: domain.UserStatusActive}
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("custom quantity order", func(t *testing.T) {
		repo := new(mockOrderRepo)
		raffleRepo := new(mockRaffleRepo)

		raffleRepo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)
		repo.On("Create", ctx, mock.MatchedBy(func(order domain.Order) bool {
			return order.Status == domain.OrderStatusPendingPayment &&
				order.OrderNumber == "ORD-20260101000000000001" &&
				order.CustomerEmail == "maria@example.com" &&
				order.Subtotal.Equal(dec("5.00")) &&
				order.TaxAmount.Equal(dec("0.60")) &&
				order.Total.Equal(dec("5.60")) &&
				len(order.Items) == 1 &&
				order.Items[0].Quantity == 5
		})).Return(domain.Order{ID: 77, Status: domain.OrderStatusPendingPayment}, nil)

		svc := newOrderService(repo, raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

		order, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, Quantity: 5}}, "bank_transfer")
		require.NoError(t, err)
		assert.Equal(t, uint(77), order.ID)
		repo.AssertExpectations(t)
	})

	t.Run("order number clash retries with a fresh number", func(t *testing.T) {
		repo := new(mockOrderRepo)
		raffleRepo := new(mockRaffleRepo)

		raffleRepo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)
		repo.On("Create", ctx, mock.MatchedBy(func(order domain.Order) bool {
			return order.OrderNumber == "ORD-20260101000000000001"
		})).Return(domain.Order{}, repository.ErrOrderNumberExists).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(order domain.Order) bool {
			return order.OrderNumber == "ORD-20260101000000000002"
		})).Return(domain.Order{ID: 80, OrderNumber: "ORD-20260101000000000002"}, nil).Once()

		svc := NewOrderService(
			repo,
			raffleRepo,
			new(mockTicketRepo),
			NewPricingService(),
			&sequenceNumbers{numbers: []string{"20260101000000000001", "20260101000000000002"}},
			allowAll{},
			new(mockNotifier),
		)

		order, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, Quantity: 5}}, "bank_transfer")
		require.NoError(t, err)
		assert.Equal(t, "ORD-20260101000000000002", order.OrderNumber)
		repo.AssertExpectations(t)
	})

	t.Run("persistent order number clash surfaces the error", func(t *testing.T) {
		repo := new(mockOrderRepo)
		raffleRepo := new(mockRaffleRepo)

		raffleRepo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)
		repo.On("Create", ctx, mock.Anything).Return(domain.Order{}, repository.ErrOrderNumberExists)

		svc := newOrderService(repo, raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, Quantity: 5}}, "bank_transfer")
		require.ErrorIs(t, err, repository.ErrOrderNumberExists)
		repo.AssertNumberOfCalls(t, "Create", 4)
	})

	t.Run("package order uses bundle price", func(t *testing.T) {
		repo := new(mockOrderRepo)
		raffleRepo := new(mockRaffleRepo)
		packageID := uint(3)

		raffleRepo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)
		raffleRepo.On("FindPackageByID", ctx, packageID).Return(domain.PricingPackage{
			ID:       packageID,
			RaffleID: 1,
			Quantity: 10,
			Price:    dec("8.50"),
			IsActive: true,
		}, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(order domain.Order) bool {
			return order.Subtotal.Equal(dec("8.50")) &&
				order.Total.Equal(dec("9.52")) &&
				order.Items[0].Quantity == 10 &&
				order.Items[0].UnitPrice.Equal(dec("8.50"))
		})).Return(domain.Order{ID: 78}, nil)

		svc := newOrderService(repo, raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, PackageID: &packageID}}, "cash")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("inactive raffle is refused", func(t *testing.T) {
		raffleRepo := new(mockRaffleRepo)
		draft := testRaffle()
		draft.Status = domain.RaffleStatusDraft
		raffleRepo.On("FindByID", ctx, uint(1)).Return(draft, nil)

		svc := newOrderService(new(mockOrderRepo), raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, Quantity: 5}}, "cash")
		require.ErrorIs(t, err, ErrRaffleNotActive)
	})

	t.Run("inactive package is refused", func(t *testing.T) {
		raffleRepo := new(mockRaffleRepo)
		packageID := uint(3)
		raffleRepo.On("FindByID", ctx, uint(1)).Return(activeRaffle(), nil)
		raffleRepo.On("FindPackageByID", ctx, packageID).Return(domain.PricingPackage{
			ID:       packageID,
			RaffleID: 1,
			IsActive: false,
		}, nil)

		svc := newOrderService(new(mockOrderRepo), raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Checkout(ctx, customer(), []CheckoutItem{{RaffleID: 1, PackageID: &packageID}}, "cash")
		require.ErrorIs(t, err, ErrPackageInactive)
	})

	t.Run("empty cart is refused", func(t *testing.T) {
		svc := newOrderService(new(mockOrderRepo), new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Checkout(ctx, customer(), nil, "cash")
		require.ErrorIs(t, err, ErrEmptyOrder)
	})
}

func TestOrderService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("approval notifies with ticket numbers", func(t *testing.T) {
		repo := new(mockOrderRepo)
		ticketRepo := new(mockTicketRepo)
		notifier := new(mockNotifier)

		approved := domain.Order{
			ID:            40,
			OrderNumber:   "ORD-1",
			Status:        domain.OrderStatusApproved,
			CustomerName:  "Maria",
			CustomerEmail: "maria@example.com",
			Total:         dec("5.60"),
		}

		repo.On("Approve", ctx, uint(40), uint(9), "TRX-99", mock.AnythingOfType("time.Time")).Return(nil)
		repo.On("FindByID", ctx, uint(40)).Return(approved, nil)
		ticketRepo.On("FindByOrderID", ctx, uint(40)).Return([]domain.Ticket{
			{TicketNumber: 101},
			{TicketNumber: 102},
		}, nil)
		notifier.On("Notify", ctx, mock.MatchedBy(func(event notification.Event) bool {
			return event.Kind == notification.EventOrderApproved &&
				event.OrderNumber == "ORD-1" &&
				len(event.TicketNumbers) == 2
		})).Return(nil)

		svc := newOrderService(repo, new(mockRaffleRepo), ticketRepo, allowAll{}, notifier)

		order, err := svc.Approve(ctx, admin(), 40, "TRX-99")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusApproved, order.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("missing payment reference", func(t *testing.T) {
		svc := newOrderService(new(mockOrderRepo), new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Approve(ctx, admin(), 40, "")
		require.ErrorIs(t, err, domain.ErrMissingPaymentReference)
	})

	t.Run("insufficient inventory aborts without notification", func(t *testing.T) {
		repo := new(mockOrderRepo)
		notifier := new(mockNotifier)
		repo.On("Approve", ctx, uint(40), uint(9), "TRX-99", mock.AnythingOfType("time.Time")).
			Return(ErrInsufficientTickets)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, notifier)

		_, err := svc.Approve(ctx, admin(), 40, "TRX-99")
		require.ErrorIs(t, err, ErrInsufficientTickets)
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("permission denied", func(t *testing.T) {
		authz := new(mockAuthorizer)
		authz.On("Authorize", mock.Anything, "approve", "orders").Return(false, nil)

		svc := newOrderService(new(mockOrderRepo), new(mockRaffleRepo), new(mockTicketRepo), authz, new(mockNotifier))

		_, err := svc.Approve(ctx, customer(), 40, "TRX-99")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("notification failure does not fail the approval", func(t *testing.T) {
		repo := new(mockOrderRepo)
		ticketRepo := new(mockTicketRepo)
		notifier := new(mockNotifier)

		repo.On("Approve", ctx, uint(40), uint(9), "TRX-99", mock.AnythingOfType("time.Time")).Return(nil)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, Status: domain.OrderStatusApproved}, nil)
		ticketRepo.On("FindByOrderID", ctx, uint(40)).Return([]domain.Ticket{}, nil)
		notifier.On("Notify", ctx, mock.Anything).Return(assert.AnError)

		svc := newOrderService(repo, new(mockRaffleRepo), ticketRepo, allowAll{}, notifier)

		_, err := svc.Approve(ctx, admin(), 40, "TRX-99")
		require.NoError(t, err)
	})
}

func TestOrderService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection notifies with the reason", func(t *testing.T) {
		repo := new(mockOrderRepo)
		notifier := new(mockNotifier)

		rejected := domain.Order{
			ID:              40,
			OrderNumber:     "ORD-1",
			Status:          domain.OrderStatusRejected,
			RejectionReason: "receipt unreadable",
		}

		repo.On("Reject", ctx, uint(40), uint(9), "receipt unreadable", mock.AnythingOfType("time.Time")).Return(nil)
		repo.On("FindByID", ctx, uint(40)).Return(rejected, nil)
		notifier.On("Notify", ctx, mock.MatchedBy(func(event notification.Event) bool {
			return event.Kind == notification.EventOrderRejected &&
				event.Reason == "receipt unreadable"
		})).Return(nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, notifier)

		_, err := svc.Reject(ctx, admin(), 40, "receipt unreadable")
		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("empty reason is refused", func(t *testing.T) {
		svc := newOrderService(new(mockOrderRepo), new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Reject(ctx, admin(), 40, "")
		require.ErrorIs(t, err, domain.ErrMissingRejectionReason)
	})

	t.Run("terminal order cannot be rejected", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("Reject", ctx, uint(40), uint(9), "too late", mock.AnythingOfType("time.Time")).
			Return(ErrInvalidTransition)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Reject(ctx, admin(), 40, "too late")
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels own pending order", func(t *testing.T) {
		repo := new(mockOrderRepo)
		pending := domain.Order{ID: 40, UserID: 5, Status: domain.OrderStatusPendingPayment}
		cancelled := domain.Order{ID: 40, UserID: 5, Status: domain.OrderStatusCancelled}

		repo.On("FindByID", ctx, uint(40)).Return(pending, nil).Once()
		repo.On("Cancel", ctx, uint(40)).Return(nil)
		repo.On("FindByID", ctx, uint(40)).Return(cancelled, nil).Once()

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		order, err := svc.Cancel(ctx, customer(), 40)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	})

	t.Run("approved order cannot be cancelled", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, UserID: 5, Status: domain.OrderStatusApproved}, nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.Cancel(ctx, customer(), 40)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("stranger without the capability is refused", func(t *testing.T) {
		repo := new(mockOrderRepo)
		authz := new(mockAuthorizer)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, UserID: 99, Status: domain.OrderStatusPendingPayment}, nil)
		authz.On("Authorize", mock.Anything, "cancel", "orders").Return(false, nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), authz, new(mockNotifier))

		_, err := svc.Cancel(ctx, customer(), 40)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestOrderService_SubmitReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("owner submits receipt", func(t *testing.T) {
		repo := new(mockOrderRepo)
		pending := domain.Order{ID: 40, UserID: 5, Status: domain.OrderStatusPendingPayment}
		verified := domain.Order{ID: 40, UserID: 5, Status: domain.OrderStatusPendingVerification}

		repo.On("FindByID", ctx, uint(40)).Return(pending, nil).Once()
		repo.On("SubmitReceipt", ctx, uint(40), "https://cdn.example.com/r.jpg").Return(nil)
		repo.On("FindByID", ctx, uint(40)).Return(verified, nil).Once()

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		order, err := svc.SubmitReceipt(ctx, customer(), 40, "https://cdn.example.com/r.jpg")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPendingVerification, order.Status)
	})

	t.Run("only the owner may submit", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, UserID: 99, Status: domain.OrderStatusPendingPayment}, nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		_, err := svc.SubmitReceipt(ctx, customer(), 40, "https://cdn.example.com/r.jpg")
		require.ErrorIs(t, err, ErrNotOrderOwner)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger without list capability", func(t *testing.T) {
		repo := new(mockOrderRepo)
		authz := new(mockAuthorizer)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, UserID: 99}, nil)
		authz.On("Authorize", mock.Anything, "list", "orders").Return(false, nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), authz, new(mockNotifier))

		_, err := svc.GetOrder(ctx, customer(), 40)
		require.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("staff with list capability reads any order", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("FindByID", ctx, uint(40)).Return(domain.Order{ID: 40, UserID: 99}, nil)

		svc := newOrderService(repo, new(mockRaffleRepo), new(mockTicketRepo), allowAll{}, new(mockNotifier))

		order, err := svc.GetOrder(ctx, admin(), 40)
		require.NoError(t, err)
		assert.Equal(t, uint(40), order.ID)
	})
}

func TestOrderService_ListUserRaffleTickets(t *testing.T) {
	ctx := context.Background()

	ticketRepo := new(mockTicketRepo)
	ticketRepo.On("FindByUserAndRaffle", ctx, uint(7), uint(3)).Return([]domain.Ticket{
		{ID: 1, TicketNumber: 14, RaffleID: 3, Status: domain.TicketStatusSold},
		{ID: 2, TicketNumber: 15, RaffleID: 3, Status: domain.TicketStatusSold},
	}, nil)

	svc := newOrderService(new(mockOrderRepo), new(mockRaffleRepo), ticketRepo, allowAll{}, new(mockNotifier))

	caller := customer()
	caller.ID = 7

	tickets, err := svc.ListUserRaffleTickets(ctx, caller, 3)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, 14, tickets[0].TicketNumber)
}

func TestOrderService_Dashboard(t *testing.T) {
	ctx := context.Background()

	repo := new(mockOrderRepo)
	raffleRepo := new(mockRaffleRepo)
	repo.On("CountByStatus", ctx).Return(map[domain.OrderStatus]int64{
		domain.OrderStatusApproved: 12,
	}, nil)
	repo.On("RevenueTotal", ctx).Return(dec("152.40"), nil)
	raffleRepo.On("SalesSummary", ctx).Return([]domain.RaffleSales{
		{RaffleID: 1, TicketsSold: 120, TicketsAvailable: 880, TotalTickets: 1000},
	}, nil)

	svc := newOrderService(repo, raffleRepo, new(mockTicketRepo), allowAll{}, new(mockNotifier))

	stats, err := svc.Dashboard(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.OrdersByStatus[domain.OrderStatusApproved])
	assert.True(t, stats.Revenue.Equal(dec("152.40")))
	require.Len(t, stats.RaffleSales, 1)
}
