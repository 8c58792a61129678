package repository

import (
	"errors"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository is the transaction data access interface.
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	ListByOrderID(orderID uint) ([]models.Transaction, error)
	TransitionPending(orderID uint, status string, updates map[string]interface{}) ([]models.Transaction, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository is the GORM implementation.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository.
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create persists a transaction.
func (r *GormTransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// GetByID fetches a transaction by primary key.
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// ListByOrderID returns all transactions of an order.
func (r *GormTransactionRepository) ListByOrderID(orderID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// TransitionPending flips every pending transaction of the order to
// the given status and returns exactly the rows that changed. The
// WHERE on the current status means redelivered notifications match
// zero rows and downstream effects never run twice.
func (r *GormTransactionRepository) TransitionPending(orderID uint, status string, updates map[string]interface{}) ([]models.Transaction, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	if status == constants.TransactionStatusCompleted {
		if _, ok := updates["paid_at"]; !ok {
			updates["paid_at"] = time.Now()
		}
	}

	var transitioned []models.Transaction
	err := r.db.Model(&transitioned).
		Clauses(clause.Returning{}).
		Where("order_id = ? AND status = ?", orderID, constants.TransactionStatusPending).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return transitioned, nil
}
