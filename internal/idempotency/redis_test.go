package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisGuardShouldProcess(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewRedisGuard(db, "plk")
	ctx := context.Background()

	mock.ExpectExists("plk:dedupe:payment:12345").SetVal(0)
	ok, err := guard.ShouldProcess(ctx, "payment:12345")
	if err != nil || !ok {
		t.Fatalf("unseen key should process, got ok=%v err=%v", ok, err)
	}

	mock.ExpectExists("plk:dedupe:payment:12345").SetVal(1)
	ok, err = guard.ShouldProcess(ctx, "payment:12345")
	if err != nil || ok {
		t.Fatalf("seen key should be suppressed, got ok=%v err=%v", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRedisGuardMarkProcessed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewRedisGuard(db, "plk")
	ctx := context.Background()

	mock.ExpectSetNX("plk:dedupe:payment:12345", 1, 10*time.Minute).SetVal(true)
	if err := guard.MarkProcessed(ctx, "payment:12345", 10*time.Minute); err != nil {
		t.Fatalf("MarkProcessed error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRedisGuardFailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewRedisGuard(db, "plk")
	ctx := context.Background()

	mock.ExpectExists("plk:dedupe:payment:12345").SetErr(errors.New("connection refused"))
	ok, err := guard.ShouldProcess(ctx, "payment:12345")
	if !ok {
		t.Fatalf("redis error must fail open")
	}
	if err == nil {
		t.Fatalf("expected error to be surfaced for logging")
	}
}

func TestRedisGuardDefaultPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewRedisGuard(db, "  ")
	ctx := context.Background()

	mock.ExpectExists("webhook:dedupe:payment:1").SetVal(0)
	if ok, _ := guard.ShouldProcess(ctx, "payment:1"); !ok {
		t.Fatalf("unseen key should process")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
