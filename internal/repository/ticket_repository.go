package repository

import (
	"errors"

	"github.com/plktk/ticketpay/internal/models"

	"gorm.io/gorm"
)

// TicketRepository is the ticket data access interface.
type TicketRepository interface {
	CreateBatch(tickets []models.Ticket) error
	GetByQRCode(qrCode string) (*models.Ticket, error)
	ListByUser(userID uint) ([]models.Ticket, error)
	WithTx(tx *gorm.DB) *GormTicketRepository
}

// GormTicketRepository is the GORM implementation.
type GormTicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a ticket repository.
func NewTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormTicketRepository) WithTx(tx *gorm.DB) *GormTicketRepository {
	if tx == nil {
		return r
	}
	return &GormTicketRepository{db: tx}
}

// CreateBatch inserts all tickets in a single statement.
func (r *GormTicketRepository) CreateBatch(tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.db.Create(&tickets).Error
}

// GetByQRCode fetches a ticket by its QR token.
func (r *GormTicketRepository) GetByQRCode(qrCode string) (*models.Ticket, error) {
	if qrCode == "" {
		return nil, nil
	}
	var ticket models.Ticket
	if err := r.db.Where("qr_code = ?", qrCode).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// ListByUser returns a user's tickets, newest first.
func (r *GormTicketRepository) ListByUser(userID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.db.Where("user_id = ?", userID).Order("id desc").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}
