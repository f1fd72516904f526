package model

// CopyAvailability is the normalized vocabulary for the legacy catalog's
// per-copy status codes.
type CopyAvailability string

const (
	CopyAvailable    CopyAvailability = "available"
	CopyLoaned       CopyAvailability = "loaned"
	CopyReservedHold CopyAvailability = "reserved-hold"
	CopyMaintenance  CopyAvailability = "maintenance"
	CopyOnDisplay    CopyAvailability = "on-display"
	CopyInProcessing CopyAvailability = "in-processing"
	CopyUnknown      CopyAvailability = "unknown"
)

// Legacy status short codes as stored in the catalog's copy-status column.
const (
	LegacyCodeAvailable    = "D"
	LegacyCodeLoaned       = "E"
	LegacyCodeReservedHold = "R"
	LegacyCodeMaintenance  = "M"
	LegacyCodeOnDisplay    = "X"
	LegacyCodeInProcessing = "P"
)

// CatalogCopyRef is a read-through view of one legacy physical copy.
type CatalogCopyRef struct {
	LegacyItemID int64            `db:"item_id" json:"legacy_item_id"`
	Title        string           `db:"title" json:"title"`
	Barcode      string           `db:"barcode" json:"barcode"`
	StatusCode   string           `db:"status_code" json:"status_code"`
	Availability CopyAvailability `db:"-" json:"availability"`
}

// AvailabilityFromCode translates a legacy short code into the normalized
// vocabulary. Unrecognized codes map to CopyUnknown; the raw code stays
// on the ref for display.
func AvailabilityFromCode(code string) CopyAvailability {
	switch code {
	case LegacyCodeAvailable:
		return CopyAvailable
	case LegacyCodeLoaned:
		return CopyLoaned
	case LegacyCodeReservedHold:
		return CopyReservedHold
	case LegacyCodeMaintenance:
		return CopyMaintenance
	case LegacyCodeOnDisplay:
		return CopyOnDisplay
	case LegacyCodeInProcessing:
		return CopyInProcessing
	default:
		return CopyUnknown
	}
}

// HumanStatus renders the availability for user-facing rejection messages.
func (c *CatalogCopyRef) HumanStatus() string {
	switch c.Availability {
	case CopyAvailable:
		return "disponível"
	case CopyLoaned:
		return "emprestado"
	case CopyReservedHold:
		return "reservado"
	case CopyMaintenance:
		return "em manutenção"
	case CopyOnDisplay:
		return "em exposição"
	case CopyInProcessing:
		return "em processamento técnico"
	default:
		return "status desconhecido (" + c.StatusCode + ")"
	}
}
