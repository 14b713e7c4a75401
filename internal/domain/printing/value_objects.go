package printing

import "github.com/govindji/backoffice/internal/domain/shared"

// Margin bounds in millimeters. Chrome rejects negative margins and anything
// past maxMarginMM eats the printable area on receipt paper.
const (
	minMarginMM = 0
	maxMarginMM = 100
)

// Margins represents the page margins in millimeters.
type Margins struct {
	Top    int `json:"top" gorm:"not null;default:0"`
	Right  int `json:"right" gorm:"not null;default:0"`
	Bottom int `json:"bottom" gorm:"not null;default:0"`
	Left   int `json:"left" gorm:"not null;default:0"`
}

// NewMargins creates a Margins value object, validating each side.
func NewMargins(top, right, bottom, left int) (Margins, error) {
	m := Margins{Top: top, Right: right, Bottom: bottom, Left: left}
	for _, side := range [4]int{top, right, bottom, left} {
		if side < minMarginMM {
			return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
		}
		if side > maxMarginMM {
			return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 100mm")
		}
	}
	return m, nil
}

// DefaultMargins returns the margins for A4/A5 sheet documents.
func DefaultMargins() Margins {
	return uniformMargins(10)
}

// ReceiptMargins returns minimal margins for thermal receipt paper.
func ReceiptMargins() Margins {
	return uniformMargins(2)
}

func uniformMargins(mm int) Margins {
	return Margins{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// IsZero reports whether all margins are zero.
func (m Margins) IsZero() bool {
	return m == Margins{}
}

// Equals reports whether two Margins are the same on every side.
func (m Margins) Equals(other Margins) bool {
	return m == other
}
