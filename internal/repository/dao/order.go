package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNumberExists  = errors.New("order number already exists")
	ErrInvalidOrderStatus = errors.New("order is not in a valid status for this change")
)

type Order struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"unique;not null"`
	UserID      uint   `gorm:"not null;index"`

	CustomerName  string `gorm:"not null"`
	CustomerEmail string `gorm:"not null;index"`
	CustomerPhone string
	CustomerDocID string

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status           string `gorm:"not null;default:pending_payment;index"`
	PaymentMethod    string `gorm:"not null"`
	ReceiptURL       string
	PaymentReference string

	ApprovedBy      *uint
	ApprovedAt      *time.Time
	RejectedBy      *uint
	RejectedAt      *time.Time
	RejectionReason string

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID       uint `gorm:"primaryKey"`
	OrderID  uint `gorm:"not null;index"`
	RaffleID uint `gorm:"not null;index"`

	PackageID *uint
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

type OrderStatusCount struct {
	Status string
	Count  int64
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

// Insert persists an order together with its items in one transaction.
func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_orders_order_number"`) {
			return Order{}, ErrOrderNumberExists
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).Preload("Items").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByUserID(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByStatus(ctx context.Context, status string) ([]Order, error) {
	var orders []Order

	query := d.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// UpdateReceipt stores the receipt URL and moves the order to
// pending_verification, guarded on the current status.
func (d *OrderDAO) UpdateReceipt(ctx context.Context, orderID uint, receiptURL string) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", orderID, "pending_payment").
		Updates(map[string]interface{}{
			"status":      "pending_verification",
			"receipt_url": receiptURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrderStatus
	}

	return nil
}

// ApproveAndAllocate performs the whole approval as one transaction: the
// guarded status flip, the ticket claims, the raffle counters and the prize
// unlocks. Any failure rolls back everything, leaving the order and the
// ticket pool exactly as before the attempt.
func (d *OrderDAO) ApproveAndAllocate(ctx context.Context, orderID, adminID uint, paymentReference string, now time.Time) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		result := tx.Model(&Order{}).
			Where("id = ? AND status IN ?", orderID, []string{"pending_payment", "pending_verification"}).
			Updates(map[string]interface{}{
				"status":            "approved",
				"payment_reference": paymentReference,
				"approved_by":       adminID,
				"approved_at":       now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidOrderStatus
		}

		perRaffle := make(map[uint]int)
		for _, item := range order.Items {
			perRaffle[item.RaffleID] += item.Quantity
		}

		for raffleID, qty := range perRaffle {
			if err := claimTickets(tx, raffleID, order.ID, order.UserID, qty, now); err != nil {
				return err
			}
			if err := applyTicketCounters(tx, raffleID, qty); err != nil {
				return err
			}
			if err := unlockEligiblePrizes(tx, raffleID, now); err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *OrderDAO) Reject(ctx context.Context, orderID, adminID uint, reason string, now time.Time) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status IN ?", orderID, []string{"pending_payment", "pending_verification"}).
		Updates(map[string]interface{}{
			"status":           "rejected",
			"rejected_by":      adminID,
			"rejected_at":      now,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrderStatus
	}

	return nil
}

func (d *OrderDAO) Complete(ctx context.Context, orderID uint) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", orderID, "approved").
		Update("status", "completed")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrderStatus
	}

	return nil
}

func (d *OrderDAO) Cancel(ctx context.Context, orderID uint) error {
	result := d.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status IN ?", orderID, []string{"pending_payment", "pending_verification"}).
		Update("status", "cancelled")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidOrderStatus
	}

	return nil
}

func (d *OrderDAO) CountByStatus(ctx context.Context) ([]OrderStatusCount, error) {
	var counts []OrderStatusCount

	result := d.db.WithContext(ctx).Model(&Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}

// RevenueTotal sums the totals of orders whose payment has been verified.
func (d *OrderDAO) RevenueTotal(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal

	result := d.db.WithContext(ctx).Model(&Order{}).
		Select("SUM(total)").
		Where("status IN ?", []string{"approved", "completed"}).
		Scan(&revenue)
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}

	return revenue.Decimal, nil
}

// CountPackageReferences reports how many order lines reference a package.
func (d *OrderDAO) CountPackageReferences(ctx context.Context, packageID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&OrderItem{}).
		Where("package_id = ?", packageID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
