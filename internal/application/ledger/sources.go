package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/payment"
)

// OrderSource supplies a party's purchase-order history as immutable
// snapshots for the reconciliation core.
type OrderSource interface {
	FetchOrders(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.OrderSnapshot, error)
}

// PaymentSource supplies a party's payment history as immutable snapshots.
// Voided records are not part of the history.
type PaymentSource interface {
	FetchPayments(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.PaymentSnapshot, error)
}

// repositoryOrderSource adapts the purchase order repository into an OrderSource
type repositoryOrderSource struct {
	repo order.Repository
}

// NewOrderSource creates a repository-backed OrderSource
func NewOrderSource(repo order.Repository) OrderSource {
	return &repositoryOrderSource{repo: repo}
}

func (s *repositoryOrderSource) FetchOrders(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.OrderSnapshot, error) {
	orders, err := s.repo.FindAllByParty(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	return ToOrderSnapshots(orders), nil
}

// repositoryPaymentSource adapts the party payment repository into a PaymentSource
type repositoryPaymentSource struct {
	repo payment.Repository
}

// NewPaymentSource creates a repository-backed PaymentSource
func NewPaymentSource(repo payment.Repository) PaymentSource {
	return &repositoryPaymentSource{repo: repo}
}

func (s *repositoryPaymentSource) FetchPayments(ctx context.Context, tenantID, partyID uuid.UUID) ([]ledger.PaymentSnapshot, error) {
	payments, err := s.repo.FindAllActiveByParty(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	return ToPaymentSnapshots(payments), nil
}

// ToOrderSnapshot copies one purchase order into the view the core computes
// over. Every field is copied by value; the snapshot holds no reference back
// to the aggregate.
func ToOrderSnapshot(o *order.PurchaseOrder) ledger.OrderSnapshot {
	items := make([]ledger.ItemSnapshot, len(o.Items))
	for i := range o.Items {
		items[i] = ledger.ItemSnapshot{
			ItemName:     o.Items[i].ItemName,
			Quantity:     o.Items[i].Quantity,
			Unit:         o.Items[i].Unit,
			PricePerUnit: o.Items[i].PricePerUnit,
			TotalAmount:  o.Items[i].TotalAmount,
			SKU:          o.Items[i].SKU,
			Description:  o.Items[i].Description,
		}
	}

	createdAt := o.CreatedAt
	finalAmount := o.FinalAmount

	return ledger.OrderSnapshot{
		ID:          o.ID,
		PONumber:    o.PONumber,
		OrderDate:   o.OrderDate,
		CreatedAt:   &createdAt,
		Status:      ledger.OrderStatus(strings.ToLower(string(o.Status))),
		FinalAmount: &finalAmount,
		Items:       items,
	}
}

// ToOrderSnapshots converts a slice of purchase orders
func ToOrderSnapshots(orders []order.PurchaseOrder) []ledger.OrderSnapshot {
	snapshots := make([]ledger.OrderSnapshot, len(orders))
	for i := range orders {
		snapshots[i] = ToOrderSnapshot(&orders[i])
	}
	return snapshots
}

// ToPaymentSnapshot copies one party payment into the view the core computes over
func ToPaymentSnapshot(p *payment.PartyPayment) ledger.PaymentSnapshot {
	createdAt := p.CreatedAt
	amount := p.Amount

	return ledger.PaymentSnapshot{
		ID:              p.ID,
		Type:            ledger.PaymentType(strings.ToLower(string(p.Type))),
		Amount:          &amount,
		PaymentDate:     p.PaymentDate,
		CreatedAt:       &createdAt,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
	}
}

// ToPaymentSnapshots converts a slice of party payments
func ToPaymentSnapshots(payments []payment.PartyPayment) []ledger.PaymentSnapshot {
	snapshots := make([]ledger.PaymentSnapshot, len(payments))
	for i := range payments {
		snapshots[i] = ToPaymentSnapshot(&payments[i])
	}
	return snapshots
}
