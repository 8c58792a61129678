package repository

import (
	"testing"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"
)

func TestGetByOrderCode(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	created := createOrderWithTransactions(t, db, "ORDER_2001", 30)

	order, err := repo.GetByOrderCode("ORDER_2001")
	if err != nil {
		t.Fatalf("GetByOrderCode error: %v", err)
	}
	if order == nil || order.ID != created.ID {
		t.Fatalf("expected order %d, got %+v", created.ID, order)
	}
	if len(order.Transactions) != 1 {
		t.Fatalf("expected transactions preloaded, got %d", len(order.Transactions))
	}

	missing, err := repo.GetByOrderCode("ORDER_NOPE")
	if err != nil {
		t.Fatalf("GetByOrderCode error: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown code should return nil, got %+v", missing)
	}
}

func TestMarkPaidOnlyFlipsPendingOrders(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	created := createOrderWithTransactions(t, db, "ORDER_2002", 30)

	if err := repo.MarkPaid(created.ID, map[string]interface{}{
		"gateway_payment_id": "555",
	}); err != nil {
		t.Fatalf("MarkPaid error: %v", err)
	}

	var stored models.Order
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if stored.PaymentStatus != constants.OrderPaymentStatusPaid {
		t.Fatalf("unexpected status: %s", stored.PaymentStatus)
	}
	if stored.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}
	if stored.GatewayPaymentID != "555" {
		t.Fatalf("extra update not applied: %s", stored.GatewayPaymentID)
	}

	// second MarkPaid matches zero rows, previous values survive
	firstPaidAt := *stored.PaidAt
	if err := repo.MarkPaid(created.ID, map[string]interface{}{
		"gateway_payment_id": "666",
	}); err != nil {
		t.Fatalf("second MarkPaid error: %v", err)
	}
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.GatewayPaymentID != "555" {
		t.Fatalf("redelivery must not overwrite, got %s", stored.GatewayPaymentID)
	}
	if !stored.PaidAt.Equal(firstPaidAt) {
		t.Fatalf("paid_at must not move on redelivery")
	}
}
