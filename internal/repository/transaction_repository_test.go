package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.Transaction{},
		&models.Ticket{},
		&models.AffiliateProfile{},
		&models.AffiliateSale{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createOrderWithTransactions(t *testing.T, db *gorm.DB, orderCode string, amounts ...float64) models.Order {
	t.Helper()
	order := models.Order{
		OrderCode:     orderCode,
		UserID:        1,
		EventID:       10,
		PaymentStatus: constants.OrderPaymentStatusPending,
		TotalAmount:   models.NewMoneyFromFloat(sum(amounts)),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	for _, amount := range amounts {
		tx := models.Transaction{
			OrderID: order.ID,
			Status:  constants.TransactionStatusPending,
			Amount:  models.NewMoneyFromFloat(amount),
		}
		if err := db.Create(&tx).Error; err != nil {
			t.Fatalf("create transaction failed: %v", err)
		}
	}
	return order
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func TestTransitionPendingReturnsFlippedRows(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)
	order := createOrderWithTransactions(t, db, "ORDER_1001", 50, 50)

	transitioned, err := repo.TransitionPending(order.ID, constants.TransactionStatusCompleted, map[string]interface{}{
		"gateway_payment_id": "12345",
	})
	if err != nil {
		t.Fatalf("TransitionPending error: %v", err)
	}
	if len(transitioned) != 2 {
		t.Fatalf("expected 2 transitioned rows, got %d", len(transitioned))
	}
	for _, tx := range transitioned {
		if tx.Status != constants.TransactionStatusCompleted {
			t.Fatalf("unexpected status: %s", tx.Status)
		}
		if !tx.Amount.Decimal.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("unexpected amount: %s", tx.Amount)
		}
	}
}

func TestTransitionPendingIsSingleShot(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)
	order := createOrderWithTransactions(t, db, "ORDER_1002", 100)

	first, err := repo.TransitionPending(order.ID, constants.TransactionStatusCompleted, nil)
	if err != nil {
		t.Fatalf("first transition error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 transitioned row, got %d", len(first))
	}

	second, err := repo.TransitionPending(order.ID, constants.TransactionStatusCompleted, nil)
	if err != nil {
		t.Fatalf("second transition error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("redelivery must flip zero rows, got %d", len(second))
	}
}

func TestTransitionPendingSetsPaidAtOnCompleted(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)
	order := createOrderWithTransactions(t, db, "ORDER_1003", 25)

	transitioned, err := repo.TransitionPending(order.ID, constants.TransactionStatusCompleted, nil)
	if err != nil {
		t.Fatalf("TransitionPending error: %v", err)
	}
	if len(transitioned) != 1 {
		t.Fatalf("expected 1 transitioned row, got %d", len(transitioned))
	}

	var stored models.Transaction
	if err := db.First(&stored, transitioned[0].ID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if stored.PaidAt == nil {
		t.Fatalf("paid_at should be set on completion")
	}
}

func TestTransitionPendingToFailedLeavesPaidAtEmpty(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewTransactionRepository(db)
	order := createOrderWithTransactions(t, db, "ORDER_1004", 25)

	transitioned, err := repo.TransitionPending(order.ID, constants.TransactionStatusFailed, nil)
	if err != nil {
		t.Fatalf("TransitionPending error: %v", err)
	}
	if len(transitioned) != 1 {
		t.Fatalf("expected 1 transitioned row, got %d", len(transitioned))
	}

	var stored models.Transaction
	if err := db.First(&stored, transitioned[0].ID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if stored.PaidAt != nil {
		t.Fatalf("paid_at should stay empty on failure")
	}
}
