package order

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestCreateInTx_InsertsOrderItemsAndTicket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(42, decimal.RequireFromString("25.00"), StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, "2026-01-02T10:00:00Z"))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(5, 10, "Collar", 2, decimal.RequireFromString("10.00")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(5, 11, "Pelota", 1, decimal.RequireFromString("5.00")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	items := []Item{
		{ProductID: 10, Name: "Collar", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: 11, Name: "Pelota", Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}
	ord, err := repo.CreateInTx(tx, 42, items, decimal.RequireFromString("25.00"))
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if ord.ID != 5 {
		t.Fatalf("expected order id 5, got %d", ord.ID)
	}
	if len(ord.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ord.Items))
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateInTx_InsertFailurePropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := repo.CreateInTx(tx, 42, nil, decimal.Zero); err == nil {
		t.Fatalf("expected error, got nil")
	}
	tx.Rollback()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListByUser_AttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	orderRows := sqlmock.NewRows([]string{"id", "user_id", "total", "status", "created_at"}).
		AddRow(6, 42, "30.00", StatusCompleted, "2026-01-03T09:00:00Z").
		AddRow(5, 42, "25.00", StatusCompleted, "2026-01-02T10:00:00Z")
	mock.ExpectQuery("SELECT id, user_id, total, status, created_at FROM orders").
		WithArgs(42).WillReturnRows(orderRows)

	itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "quantity", "unit_price"}).
		AddRow(1, 5, 10, "Collar", 2, "10.00").
		AddRow(2, 6, 11, "Pelota", 6, "5.00")
	mock.ExpectQuery("FROM order_items").WillReturnRows(itemRows)

	orders, err := repo.ListByUser(42)
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].Name != "Pelota" {
		t.Fatalf("unexpected items on first order: %+v", orders[0].Items)
	}
	if len(orders[1].Items) != 1 || orders[1].Items[0].Name != "Collar" {
		t.Fatalf("unexpected items on second order: %+v", orders[1].Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTicketByOrder_ScopedToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM tickets t").WithArgs(5, 42).WillReturnError(sql.ErrNoRows)

	if _, err := repo.TicketByOrder(5, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
