package printing

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/govindji/backoffice/internal/application/ledger"
	"github.com/govindji/backoffice/internal/domain/ledger"
	"github.com/govindji/backoffice/internal/domain/order"
	"github.com/govindji/backoffice/internal/domain/party"
	"github.com/govindji/backoffice/internal/domain/payment"
	"github.com/govindji/backoffice/internal/domain/printing"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DataOptions narrows what a provider loads. The period window applies to
// statements; other document types ignore it.
type DataOptions struct {
	PeriodFrom *time.Time
	PeriodTo   *time.Time
}

// LoadedDocument is the provider output: the document's display number and
// the view model the template binds against.
type LoadedDocument struct {
	Number string
	Data   any
}

// DocumentDataProvider loads the authoritative data for one printable
// document type. Templates never receive client-supplied data; whatever
// lands on paper was read from the same repositories the API serves.
type DocumentDataProvider interface {
	// DocumentType returns the document type this provider handles
	DocumentType() printing.DocType
	// Load retrieves the document data for rendering
	Load(ctx context.Context, tenantID, documentID uuid.UUID, opts DataOptions) (*LoadedDocument, error)
}

// DocumentData is the top-level structure every print template binds to
type DocumentData struct {
	// Meta identifies the document being printed
	Meta DocumentMeta
	// Business is the letterhead block
	Business BusinessInfo
	// Document is the type-specific view model (StatementData,
	// PurchaseOrderData or PaymentReceiptData)
	Document any
	// PrintedAt is when this render happened
	PrintedAt time.Time
}

// DocumentMeta contains common metadata for all printed documents
type DocumentMeta struct {
	DocType     printing.DocType
	DocTypeName string
	DocNo       string
}

// BusinessInfo is the letterhead identity printed at the top of every
// document. It comes from configuration, not tenant data.
type BusinessInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

// =============================================================================
// View models
// =============================================================================

// PartyInfo is the party block shared by all document types
type PartyInfo struct {
	Name           string
	Code           string
	ContactName    string
	Phone          string
	Email          string
	Address        string
	GSTIN          string
	CreditDays     int
	OpeningBalance decimal.Decimal
}

// StatementRow is one printed line of the ledger statement. Debit and
// Credit are nil on the side the row has no amount for.
type StatementRow struct {
	Index       int
	Date        time.Time
	Description string
	Reference   string
	Debit       *decimal.Decimal
	Credit      *decimal.Decimal
	// Running is the balance after this row. Adjustment rows repeat the
	// previous value since they never move the balance.
	Running    decimal.Decimal
	Adjustment bool
}

// StatementData is the view model for the party ledger statement
type StatementData struct {
	Party      PartyInfo
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	// PeriodOpening is the balance carried in from entries before the
	// window. Zero when the window is open at the start.
	PeriodOpening    decimal.Decimal
	Rows             []StatementRow
	TotalDebits      decimal.Decimal
	TotalCredits     decimal.Decimal
	TotalAdjustments decimal.Decimal
	HasAdjustments   bool
	// ClosingBalance is PeriodOpening + TotalDebits - TotalCredits. Over
	// the full history it equals the party's outstanding balance.
	ClosingBalance decimal.Decimal
	ItemsTotal     decimal.Decimal
	Warnings       []string
}

// OrderItemInfo is one printed line of a purchase order
type OrderItemInfo struct {
	Index        int
	ItemName     string
	SKU          string
	Quantity     decimal.Decimal
	Unit         string
	PricePerUnit decimal.Decimal
	TotalAmount  decimal.Decimal
	Description  string
}

// OrderInfo is the order block of the purchase order document
type OrderInfo struct {
	PONumber    string
	OrderDate   time.Time
	Status      string
	Notes       string
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal
	Items       []OrderItemInfo
}

// PurchaseOrderData is the view model for the purchase order document
type PurchaseOrderData struct {
	Party PartyInfo
	Order OrderInfo
}

// PaymentInfo is the payment block of the receipt document
type PaymentInfo struct {
	PaymentNumber   string
	PaymentDate     time.Time
	Amount          decimal.Decimal
	MethodLabel     string
	TypeLabel       string
	ReferenceNumber string
	Notes           string
	Adjustment      bool
	Voided          bool
}

// PaymentReceiptData is the view model for the payment receipt document
type PaymentReceiptData struct {
	Party   PartyInfo
	Payment PaymentInfo
}

// =============================================================================
// Registry
// =============================================================================

// DataProviderRegistry resolves the provider for a document type. The
// print service renders only document types that have a provider wired.
type DataProviderRegistry struct {
	mu        sync.RWMutex
	providers map[printing.DocType]DocumentDataProvider
}

// NewDataProviderRegistry creates an empty registry
func NewDataProviderRegistry() *DataProviderRegistry {
	return &DataProviderRegistry{
		providers: make(map[printing.DocType]DocumentDataProvider),
	}
}

// Register adds a provider, replacing any existing one for the same type
func (r *DataProviderRegistry) Register(provider DocumentDataProvider) {
	if provider == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.DocumentType()] = provider
}

// Load resolves the provider for the document type and loads the data
func (r *DataProviderRegistry) Load(ctx context.Context, tenantID uuid.UUID, docType printing.DocType, documentID uuid.UUID, opts DataOptions) (*LoadedDocument, error) {
	r.mu.RLock()
	provider, ok := r.providers[docType]
	r.mu.RUnlock()
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document type cannot be printed")
	}
	return provider.Load(ctx, tenantID, documentID, opts)
}

// RegisteredTypes returns the document types that can be printed
func (r *DataProviderRegistry) RegisteredTypes() []printing.DocType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]printing.DocType, 0, len(r.providers))
	for docType := range r.providers {
		types = append(types, docType)
	}
	slices.Sort(types)
	return types
}

// =============================================================================
// Providers
// =============================================================================

// StatementDataProvider builds the ledger statement view model. It reads
// through the same statement service the JSON API uses, so the printed
// figures can never drift from what the screen shows.
type StatementDataProvider struct {
	partyRepo  party.Repository
	statements *ledgerapp.StatementService
}

// NewStatementDataProvider creates a statement data provider
func NewStatementDataProvider(partyRepo party.Repository, statements *ledgerapp.StatementService) *StatementDataProvider {
	return &StatementDataProvider{partyRepo: partyRepo, statements: statements}
}

func (p *StatementDataProvider) DocumentType() printing.DocType {
	return printing.DocTypeStatement
}

// Load fetches the party's full history and windows it down afterwards,
// so the opening line can carry the balance from before the window.
func (p *StatementDataProvider) Load(ctx context.Context, tenantID, documentID uuid.UUID, opts DataOptions) (*LoadedDocument, error) {
	pty, err := p.partyRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	stmt, err := p.statements.BuildStatement(ctx, tenantID, documentID, ledgerapp.StatementFilter{})
	if err != nil {
		return nil, err
	}

	data := buildStatementData(pty, stmt, opts)
	return &LoadedDocument{Number: pty.Code, Data: data}, nil
}

// buildStatementData windows the merged entries and computes the running
// balance. Entries before the window accumulate into the opening line;
// adjustment rows are shown but excluded from the running column, keeping
// the last row equal to the closing balance.
func buildStatementData(pty *party.Party, stmt *ledgerapp.StatementResponse, opts DataOptions) *StatementData {
	data := &StatementData{
		Party:      toPartyInfo(pty),
		PeriodFrom: opts.PeriodFrom,
		PeriodTo:   opts.PeriodTo,
		ItemsTotal: stmt.ItemsTotal,
		Warnings:   stmt.Warnings,
	}

	opening := decimal.Zero
	running := decimal.Zero
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	totalAdjustments := decimal.Zero
	var rows []StatementRow

	for _, e := range stmt.Entries {
		beforeWindow := opts.PeriodFrom != nil && e.Date.Before(*opts.PeriodFrom)
		afterWindow := opts.PeriodTo != nil && e.Date.After(*opts.PeriodTo)

		if beforeWindow {
			if e.Kind == string(ledger.EntryKindDebit) {
				opening = opening.Add(e.Amount)
			} else if !e.Adjustment {
				opening = opening.Sub(e.Amount)
			}
			continue
		}
		if afterWindow {
			continue
		}

		row := StatementRow{
			Index:       len(rows) + 1,
			Date:        e.Date,
			Description: e.Description,
			Reference:   e.Reference,
			Adjustment:  e.Adjustment,
		}
		amount := e.Amount
		if e.Kind == string(ledger.EntryKindDebit) {
			row.Debit = &amount
			running = running.Add(amount)
			totalDebits = totalDebits.Add(amount)
		} else {
			row.Credit = &amount
			if e.Adjustment {
				totalAdjustments = totalAdjustments.Add(amount)
				data.HasAdjustments = true
			} else {
				running = running.Sub(amount)
				totalCredits = totalCredits.Add(amount)
			}
		}
		row.Running = opening.Add(running)
		rows = append(rows, row)
	}

	data.PeriodOpening = opening
	data.Rows = rows
	data.TotalDebits = totalDebits
	data.TotalCredits = totalCredits
	data.TotalAdjustments = totalAdjustments
	data.ClosingBalance = opening.Add(totalDebits).Sub(totalCredits)
	return data
}

// PurchaseOrderDataProvider builds the purchase order view model
type PurchaseOrderDataProvider struct {
	orderRepo order.Repository
	partyRepo party.Repository
}

// NewPurchaseOrderDataProvider creates a purchase order data provider
func NewPurchaseOrderDataProvider(orderRepo order.Repository, partyRepo party.Repository) *PurchaseOrderDataProvider {
	return &PurchaseOrderDataProvider{orderRepo: orderRepo, partyRepo: partyRepo}
}

func (p *PurchaseOrderDataProvider) DocumentType() printing.DocType {
	return printing.DocTypePurchaseOrder
}

func (p *PurchaseOrderDataProvider) Load(ctx context.Context, tenantID, documentID uuid.UUID, opts DataOptions) (*LoadedDocument, error) {
	o, err := p.orderRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemInfo, len(o.Items))
	for i, item := range sortedItems(o.Items) {
		items[i] = OrderItemInfo{
			Index:        i + 1,
			ItemName:     item.ItemName,
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			PricePerUnit: item.PricePerUnit,
			TotalAmount:  item.TotalAmount,
			Description:  item.Description,
		}
	}

	data := &PurchaseOrderData{
		Party: p.resolveParty(ctx, tenantID, o.PartyID, o.PartyName),
		Order: OrderInfo{
			PONumber:    o.PONumber,
			OrderDate:   o.OrderDate,
			Status:      string(o.Status),
			Notes:       o.Notes,
			Subtotal:    o.Subtotal,
			Discount:    o.Discount,
			FinalAmount: o.FinalAmount,
			Items:       items,
		},
	}
	return &LoadedDocument{Number: o.PONumber, Data: data}, nil
}

// resolveParty falls back to the name denormalized on the document when
// the party record is gone, so old documents still print.
func (p *PurchaseOrderDataProvider) resolveParty(ctx context.Context, tenantID, partyID uuid.UUID, fallbackName string) PartyInfo {
	pty, err := p.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return PartyInfo{Name: fallbackName}
	}
	return toPartyInfo(pty)
}

func sortedItems(items []order.Item) []order.Item {
	sorted := make([]order.Item, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b order.Item) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return sorted
}

// PaymentReceiptDataProvider builds the payment receipt view model
type PaymentReceiptDataProvider struct {
	paymentRepo payment.Repository
	partyRepo   party.Repository
}

// NewPaymentReceiptDataProvider creates a payment receipt data provider
func NewPaymentReceiptDataProvider(paymentRepo payment.Repository, partyRepo party.Repository) *PaymentReceiptDataProvider {
	return &PaymentReceiptDataProvider{paymentRepo: paymentRepo, partyRepo: partyRepo}
}

func (p *PaymentReceiptDataProvider) DocumentType() printing.DocType {
	return printing.DocTypePaymentReceipt
}

func (p *PaymentReceiptDataProvider) Load(ctx context.Context, tenantID, documentID uuid.UUID, opts DataOptions) (*LoadedDocument, error) {
	pay, err := p.paymentRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	info := PaymentInfo{
		PaymentNumber:   pay.PaymentNumber,
		PaymentDate:     pay.PaymentDate,
		Amount:          pay.Amount,
		MethodLabel:     methodLabel(pay.Method),
		TypeLabel:       "Payment Receipt",
		ReferenceNumber: pay.ReferenceNumber,
		Notes:           pay.Notes,
		Adjustment:      pay.Type == payment.TypeAdjustment,
		Voided:          pay.Status == payment.StatusVoided,
	}
	if info.Adjustment {
		info.TypeLabel = "Adjustment Memo"
	}

	partyInfo := PartyInfo{Name: pay.PartyName}
	if pty, err := p.partyRepo.FindByIDForTenant(ctx, tenantID, pay.PartyID); err == nil {
		partyInfo = toPartyInfo(pty)
	}

	data := &PaymentReceiptData{Party: partyInfo, Payment: info}
	return &LoadedDocument{Number: pay.PaymentNumber, Data: data}, nil
}

func methodLabel(m payment.Method) string {
	switch m {
	case payment.MethodCash:
		return "Cash"
	case payment.MethodBankTransfer:
		return "Bank Transfer"
	case payment.MethodUPI:
		return "UPI"
	case payment.MethodCheque:
		return "Cheque"
	}
	return string(m)
}

func toPartyInfo(pty *party.Party) PartyInfo {
	return PartyInfo{
		Name:           pty.Name,
		Code:           pty.Code,
		ContactName:    pty.ContactName,
		Phone:          pty.Phone,
		Email:          pty.Email,
		Address:        formatPartyAddress(pty),
		GSTIN:          pty.GSTIN,
		CreditDays:     pty.CreditDays,
		OpeningBalance: pty.OpeningBalance,
	}
}

// formatPartyAddress joins the address parts into one printable line
func formatPartyAddress(pty *party.Party) string {
	parts := make([]string, 0, 3)
	if pty.Address != "" {
		parts = append(parts, pty.Address)
	}
	if pty.City != "" {
		parts = append(parts, pty.City)
	}
	region := strings.TrimSpace(pty.State + " " + pty.PinCode)
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}

var (
	_ DocumentDataProvider = (*StatementDataProvider)(nil)
	_ DocumentDataProvider = (*PurchaseOrderDataProvider)(nil)
	_ DocumentDataProvider = (*PaymentReceiptDataProvider)(nil)
)
