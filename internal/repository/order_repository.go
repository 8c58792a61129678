package repository

import (
	"errors"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"

	"gorm.io/gorm"
)

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order, transactions []models.Transaction) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderCode(orderCode string) (*models.Order, error)
	MarkPaid(id uint, updates map[string]interface{}) error
	UpdatePaymentStatus(id uint, status string, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create persists an order with its transactions.
func (r *GormOrderRepository) Create(order *models.Order, transactions []models.Transaction) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range transactions {
		transactions[i].OrderID = order.ID
	}
	if len(transactions) > 0 {
		if err := r.db.Create(&transactions).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches an order by primary key.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Transactions").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderCode fetches an order by its public code. The gateway's
// external_reference carries this code back on notifications.
func (r *GormOrderRepository) GetByOrderCode(orderCode string) (*models.Order, error) {
	if orderCode == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Transactions").
		Where("order_code = ?", orderCode).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips a pending order to paid. The WHERE on the current
// status makes concurrent redeliveries a no-op.
func (r *GormOrderRepository) MarkPaid(id uint, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["payment_status"] = constants.OrderPaymentStatusPaid
	if _, ok := updates["paid_at"]; !ok {
		updates["paid_at"] = time.Now()
	}
	return r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, constants.OrderPaymentStatusPending).
		Updates(updates).Error
}

// UpdatePaymentStatus updates the payment status plus extra fields.
func (r *GormOrderRepository) UpdatePaymentStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["payment_status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
