package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository/dao"
)

var (
	ErrOrderNotFound       = dao.ErrOrderNotFound
	ErrOrderNumberExists   = dao.ErrOrderNumberExists
	ErrInsufficientTickets = dao.ErrInsufficientTickets
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Order, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Order, error)
	UpdateReceipt(ctx context.Context, orderID uint, receiptURL string) error
	ApproveAndAllocate(ctx context.Context, orderID, adminID uint, paymentReference string, now time.Time) error
	Reject(ctx context.Context, orderID, adminID uint, reason string, now time.Time) error
	Complete(ctx context.Context, orderID uint) error
	Cancel(ctx context.Context, orderID uint) error
	CountByStatus(ctx context.Context) ([]dao.OrderStatusCount, error)
	RevenueTotal(ctx context.Context) (decimal.Decimal, error)
	CountPackageReferences(ctx context.Context, packageID uint) (int64, error)
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Order, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	found, err := r.dao.FindByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *OrderRepository) SubmitReceipt(ctx context.Context, orderID uint, receiptURL string) error {
	if err := r.dao.UpdateReceipt(ctx, orderID, receiptURL); err != nil {
		return fmt.Errorf("r.dao.UpdateReceipt -> %w", r.mapStatusConflict(err))
	}

	return nil
}

// Approve runs the guarded status flip and the ticket allocation as one
// storage transaction. On any failure the order and the ticket pool are
// unchanged.
func (r *OrderRepository) Approve(ctx context.Context, orderID, adminID uint, paymentReference string, now time.Time) error {
	if err := r.dao.ApproveAndAllocate(ctx, orderID, adminID, paymentReference, now); err != nil {
		if errors.Is(err, dao.ErrInsufficientTickets) {
			return ErrInsufficientTickets
		}

		return fmt.Errorf("r.dao.ApproveAndAllocate -> %w", r.mapStatusConflict(err))
	}

	return nil
}

func (r *OrderRepository) Reject(ctx context.Context, orderID, adminID uint, reason string, now time.Time) error {
	if err := r.dao.Reject(ctx, orderID, adminID, reason, now); err != nil {
		return fmt.Errorf("r.dao.Reject -> %w", r.mapStatusConflict(err))
	}

	return nil
}

func (r *OrderRepository) Complete(ctx context.Context, orderID uint) error {
	if err := r.dao.Complete(ctx, orderID); err != nil {
		return fmt.Errorf("r.dao.Complete -> %w", r.mapStatusConflict(err))
	}

	return nil
}

func (r *OrderRepository) Cancel(ctx context.Context, orderID uint) error {
	if err := r.dao.Cancel(ctx, orderID); err != nil {
		return fmt.Errorf("r.dao.Cancel -> %w", r.mapStatusConflict(err))
	}

	return nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	counts, err := r.dao.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByStatus -> %w", err)
	}

	byStatus := make(map[domain.OrderStatus]int64, len(counts))
	for _, row := range counts {
		byStatus[domain.OrderStatus(row.Status)] = row.Count
	}

	return byStatus, nil
}

func (r *OrderRepository) RevenueTotal(ctx context.Context) (decimal.Decimal, error) {
	revenue, err := r.dao.RevenueTotal(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.RevenueTotal -> %w", err)
	}

	return revenue, nil
}

func (r *OrderRepository) IsPackageReferenced(ctx context.Context, packageID uint) (bool, error) {
	count, err := r.dao.CountPackageReferences(ctx, packageID)
	if err != nil {
		return false, fmt.Errorf("r.dao.CountPackageReferences -> %w", err)
	}

	return count > 0, nil
}

// mapStatusConflict translates the DAO's guarded-update failure into the
// domain's transition error so callers see one taxonomy.
func (r *OrderRepository) mapStatusConflict(err error) error {
	if errors.Is(err, dao.ErrInvalidOrderStatus) {
		return domain.ErrInvalidTransition
	}

	return err
}

func (r *OrderRepository) domainToDao(order domain.Order) dao.Order {
	items := make([]dao.OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = dao.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			RaffleID:  item.RaffleID,
			PackageID: item.PackageID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return dao.Order{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		CustomerDocID:    order.CustomerDocID,
		Subtotal:         order.Subtotal,
		TaxAmount:        order.TaxAmount,
		Total:            order.Total,
		Status:           string(order.Status),
		PaymentMethod:    order.PaymentMethod,
		ReceiptURL:       order.ReceiptURL,
		PaymentReference: order.PaymentReference,
		ApprovedBy:       order.ApprovedBy,
		ApprovedAt:       order.ApprovedAt,
		RejectedBy:       order.RejectedBy,
		RejectedAt:       order.RejectedAt,
		RejectionReason:  order.RejectionReason,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func (r *OrderRepository) daoToDomain(order dao.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			RaffleID:  item.RaffleID,
			PackageID: item.PackageID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return domain.Order{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		CustomerDocID:    order.CustomerDocID,
		Subtotal:         order.Subtotal,
		TaxAmount:        order.TaxAmount,
		Total:            order.Total,
		Status:           domain.OrderStatus(order.Status),
		PaymentMethod:    order.PaymentMethod,
		ReceiptURL:       order.ReceiptURL,
		PaymentReference: order.PaymentReference,
		ApprovedBy:       order.ApprovedBy,
		ApprovedAt:       order.ApprovedAt,
		RejectedBy:       order.RejectedBy,
		RejectedAt:       order.RejectedAt,
		RejectionReason:  order.RejectionReason,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func (r *OrderRepository) daosToDomain(orders []dao.Order) []domain.Order {
	result := make([]domain.Order, len(orders))
	for i, order := range orders {
		result[i] = r.daoToDomain(order)
	}

	return result
}
