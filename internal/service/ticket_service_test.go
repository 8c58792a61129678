package service

import (
	"strings"
	"testing"

	"github.com/plktk/ticketpay/internal/constants"
	"github.com/plktk/ticketpay/internal/models"
	"github.com/plktk/ticketpay/internal/repository"

	"github.com/shopspring/decimal"
)

func TestIssueCreatesOneTicketPerTransaction(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewTicketService(repository.NewTicketRepository(db))

	order := &models.Order{
		ID:        1,
		OrderCode: "ORDER_1001",
		UserID:    7,
		EventID:   42,
	}
	transitioned := []models.Transaction{
		{ID: 11, OrderID: 1, Amount: models.NewMoneyFromFloat(50), GatewayPaymentID: "123456"},
		{ID: 12, OrderID: 1, Amount: models.NewMoneyFromFloat(50), GatewayPaymentID: "123456"},
	}

	tickets, err := svc.Issue(order, transitioned)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}

	var count int64
	if err := db.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count tickets failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 stored tickets, got %d", count)
	}

	seen := map[string]bool{}
	for _, ticket := range tickets {
		if ticket.UserID != 7 || ticket.EventID != 42 {
			t.Fatalf("ticket owner fields wrong: %+v", ticket)
		}
		if !ticket.Price.Decimal.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("ticket price must equal transaction amount, got %s", ticket.Price)
		}
		if ticket.Status != constants.TicketStatusActive {
			t.Fatalf("unexpected status: %s", ticket.Status)
		}
		if ticket.TicketType != constants.DefaultTicketType {
			t.Fatalf("expected fallback ticket type, got %s", ticket.TicketType)
		}
		if !strings.HasPrefix(ticket.QRCode, "PLKTK_42_") {
			t.Fatalf("unexpected qr code: %s", ticket.QRCode)
		}
		if seen[ticket.QRCode] {
			t.Fatalf("duplicate qr code: %s", ticket.QRCode)
		}
		seen[ticket.QRCode] = true
		if ticket.Metadata.String("order_code") != "ORDER_1001" {
			t.Fatalf("metadata back-link missing: %+v", ticket.Metadata)
		}
	}
}

func TestIssueUsesItemNameAsTicketType(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewTicketService(repository.NewTicketRepository(db))

	order := &models.Order{ID: 2, OrderCode: "ORDER_1002", UserID: 7, EventID: 42}
	transitioned := []models.Transaction{
		{
			ID:      21,
			OrderID: 2,
			Amount:  models.NewMoneyFromFloat(80),
			Metadata: models.JSON{
				"item": map[string]interface{}{"name": "VIP", "code": "VIP01"},
			},
		},
	}

	tickets, err := svc.Issue(order, transitioned)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].TicketType != "VIP" {
		t.Fatalf("expected item name as ticket type, got %+v", tickets)
	}
	if tickets[0].Metadata.String("item_code") != "VIP01" {
		t.Fatalf("item code not carried: %+v", tickets[0].Metadata)
	}
}

func TestIssueWithoutTransitionedIsNoOp(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewTicketService(repository.NewTicketRepository(db))

	tickets, err := svc.Issue(&models.Order{ID: 3}, nil)
	if err != nil || tickets != nil {
		t.Fatalf("empty transition set must issue nothing, got %v err=%v", tickets, err)
	}
}

func TestGenerateQRCodeFormat(t *testing.T) {
	code := GenerateQRCode(42)
	parts := strings.Split(code, "_")
	if len(parts) != 4 {
		t.Fatalf("expected 4 segments, got %q", code)
	}
	if parts[0] != "PLKTK" || parts[1] != "42" {
		t.Fatalf("unexpected prefix segments: %q", code)
	}
	if GenerateQRCode(42) == code {
		t.Fatalf("consecutive codes must differ")
	}
}
