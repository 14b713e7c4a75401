package printing

// DocType identifies the kind of document a template renders
type DocType string

const (
	// DocTypeStatement is a party ledger statement: the reconciled
	// debit/credit history for one supplier or buyer over a date window.
	DocTypeStatement DocType = "STATEMENT"

	// DocTypePurchaseOrder is a purchase order sent to a supplier.
	DocTypePurchaseOrder DocType = "PURCHASE_ORDER"

	// DocTypePaymentReceipt is the receipt voucher for a recorded payment.
	DocTypePaymentReceipt DocType = "PAYMENT_RECEIPT"
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeStatement, DocTypePurchaseOrder, DocTypePaymentReceipt:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the human-readable name used in PDF titles and lists
func (d DocType) DisplayName() string {
	switch d {
	case DocTypeStatement:
		return "Party Ledger Statement"
	case DocTypePurchaseOrder:
		return "Purchase Order"
	case DocTypePaymentReceipt:
		return "Payment Receipt"
	default:
		return string(d)
	}
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeStatement, DocTypePurchaseOrder, DocTypePaymentReceipt,
	}
}

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4          PaperSize = "A4"           // 210mm x 297mm
	PaperSizeA5          PaperSize = "A5"           // 148mm x 210mm
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM" // 80mm thermal receipt
	PaperSizeReceipt58MM PaperSize = "RECEIPT_58MM" // 58mm thermal receipt
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeReceipt80MM, PaperSizeReceipt58MM:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters.
// Receipt paper has variable height, reported as 0.
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	case PaperSizeA5:
		return 148, 210
	case PaperSizeReceipt80MM:
		return 80, 0
	case PaperSizeReceipt58MM:
		return 58, 0
	default:
		return 210, 297 // Default to A4
	}
}

// IsReceipt returns true if this is a thermal receipt paper size
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt80MM || p == PaperSizeReceipt58MM
}

// AllPaperSizes returns all valid PaperSize values
func AllPaperSizes() []PaperSize {
	return []PaperSize{
		PaperSizeA4, PaperSizeA5, PaperSizeReceipt80MM, PaperSizeReceipt58MM,
	}
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// TemplateStatus represents the status of a print template
type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusInactive TemplateStatus = "INACTIVE"
)

// IsValid checks if the TemplateStatus is a valid value
func (s TemplateStatus) IsValid() bool {
	switch s {
	case TemplateStatusActive, TemplateStatusInactive:
		return true
	}
	return false
}

// String returns the string representation of TemplateStatus
func (s TemplateStatus) String() string {
	return string(s)
}

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRendering, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusCompleted || target == JobStatusFailed
	case JobStatusCompleted, JobStatusFailed:
		return false // Terminal states
	}
	return false
}
