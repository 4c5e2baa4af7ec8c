package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest línea solicitada (sku, cantidad).
type LineRequest struct {
	SkuID             string          `json:"sku_id" validate:"required"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
}

// ValidateRequest body para POST /ledger/validate.
// DocumentID opcional: si viene, se aplica el crédito propio del documento.
type ValidateRequest struct {
	DocumentID   string        `json:"document_id,omitempty"`
	DocumentType string        `json:"document_type,omitempty" validate:"omitempty,oneof=order production"`
	Lines        []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ValidationLineDTO detalle por SKU de una validación.
// requested_quantity es la cantidad total pedida para el SKU (no el incremento) y
// available_at_check_time ya incluye self_credit, lo consumido antes por el mismo documento.
// Editar de 30 a 50 con 70 libres se informa como 50 contra 100 (self_credit 30),
// equivalente a comprobar el incremento de 20 contra 70.
type ValidationLineDTO struct {
	SkuID                string          `json:"sku_id"`
	RequestedQuantity    decimal.Decimal `json:"requested_quantity"`
	AvailableAtCheckTime decimal.Decimal `json:"available_at_check_time"`
	SelfCredit           decimal.Decimal `json:"self_credit"`
	OK                   bool            `json:"ok"`
}

// ValidasiKetersediaanDTO resultado de la validación de reserva.
type ValidasiKetersediaanDTO struct {
	Valid  bool                `json:"valid"`
	Detail []ValidationLineDTO `json:"detail"`
}

// BeratTersediaDTO disponibilidad por SKU.
type BeratTersediaDTO struct {
	SkuID         string          `json:"sku_id"`
	Nama          string          `json:"nama"`
	Kode          string          `json:"kode"`
	TotalMasuk    decimal.Decimal `json:"total_masuk"`
	TotalTerpakai decimal.Decimal `json:"total_terpakai"`
	Tersedia      decimal.Decimal `json:"tersedia"`
	HargaRata     decimal.Decimal `json:"harga_rata"`
	Status        string          `json:"status"`
}

// PrediksiKehabisanDTO predicción de agotamiento. days_until_depletion es null sin consumo.
type PrediksiKehabisanDTO struct {
	SkuID               string           `json:"sku_id"`
	Available           decimal.Decimal  `json:"available"`
	AvgDailyConsumption decimal.Decimal  `json:"avg_daily_consumption"`
	DaysUntilDepletion  *decimal.Decimal `json:"days_until_depletion"`
	Status              string           `json:"status"`
	WindowDays          int              `json:"window_days"`
}

// RingkasanKetersediaanDTO resumen de disponibilidad.
type RingkasanKetersediaanDTO struct {
	TotalJenisBarang  int             `json:"total_jenis_barang"`
	BarangHampirHabis int             `json:"barang_hampir_habis"`
	BarangStokAman    int             `json:"barang_stok_aman"`
	TotalNilaiStok    decimal.Decimal `json:"total_nilai_stok"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// LedgerHistoryDTO entrada del historial de un SKU.
type LedgerHistoryDTO struct {
	ID                 string          `json:"id"`
	Direction          string          `json:"direction"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	SourceDocumentID   string          `json:"source_document_id"`
	SourceDocumentType string          `json:"source_document_type"`
	RecordedAt         time.Time       `json:"recorded_at"`
	RecordedBy         string          `json:"recorded_by,omitempty"`
}

// SkuDetailDTO disponibilidad más historial inverso-cronológico.
type SkuDetailDTO struct {
	BeratTersediaDTO
	Masuk  []LedgerHistoryDTO `json:"riwayat_masuk"`
	Keluar []LedgerHistoryDTO `json:"riwayat_keluar"`
}

// LowStockAlertDTO SKU con estado distinto de aman.
type LowStockAlertDTO struct {
	SkuID    string          `json:"sku_id"`
	Kode     string          `json:"kode"`
	Nama     string          `json:"nama"`
	Tersedia decimal.Decimal `json:"tersedia"`
	Status   string          `json:"status"`
}

// CreateSkuRequest body para POST /ledger/skus.
type CreateSkuRequest struct {
	Kode   string `json:"kode" validate:"required,max=50"`
	Nama   string `json:"nama" validate:"required,max=200"`
	Satuan string `json:"satuan,omitempty" validate:"omitempty,max=20"`
}

// UpdateSkuRequest body para PUT /ledger/skus/:id.
type UpdateSkuRequest struct {
	Kode   string `json:"kode" validate:"required,max=50"`
	Nama   string `json:"nama" validate:"required,max=200"`
	Satuan string `json:"satuan,omitempty" validate:"omitempty,max=20"`
}

// SkuDTO respuesta de SKU.
type SkuDTO struct {
	ID        string    `json:"id"`
	Kode      string    `json:"kode"`
	Nama      string    `json:"nama"`
	Satuan    string    `json:"satuan"`
	CreatedAt time.Time `json:"created_at"`
}

// SkuPageDTO página del catálogo de SKUs.
type SkuPageDTO struct {
	Items []SkuDTO     `json:"items"`
	Page  PageResponse `json:"page"`
}

// ProcurementLineRequest línea recibida de una compra.
type ProcurementLineRequest struct {
	SkuID     string          `json:"sku_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ReceiveProcurementRequest body para POST /ledger/procurements.
type ReceiveProcurementRequest struct {
	DocumentID string                   `json:"document_id" validate:"required"`
	Lines      []ProcurementLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DocumentLineRequest línea de un pedido u orden de producción.
type DocumentLineRequest struct {
	SkuID    string          `json:"sku_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateDocumentRequest body para POST /ledger/documents.
type CreateDocumentRequest struct {
	DocumentID   string                `json:"document_id" validate:"required"`
	DocumentType string                `json:"document_type" validate:"required,oneof=order production"`
	Status       string                `json:"status,omitempty"`
	Lines        []DocumentLineRequest `json:"lines" validate:"dive"`
}

// UpdateDocumentRequest body para PUT /ledger/documents/:type/:id.
// Status vacío conserva el estado; Lines nil conserva las líneas.
type UpdateDocumentRequest struct {
	Status string                 `json:"status,omitempty"`
	Lines  *[]DocumentLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// ChangeStatusRequest body para PATCH /ledger/documents/:type/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DocumentDTO documento con sus salidas vigentes.
type DocumentDTO struct {
	DocumentID   string                `json:"document_id"`
	DocumentType string                `json:"document_type"`
	Status       string                `json:"status"`
	Consuming    bool                  `json:"consuming"`
	Version      int64                 `json:"version"`
	Lines        []DocumentLineRequest `json:"lines"`
	Outbound     []LedgerHistoryDTO    `json:"outbound"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// StockChangeDTO efecto por SKU de una transición.
type StockChangeDTO struct {
	SkuID  string          `json:"sku_id"`
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
	Delta  decimal.Decimal `json:"delta"`
}

// TransitionResultDTO respuesta de una transición confirmada.
type TransitionResultDTO struct {
	Document  DocumentDTO      `json:"document"`
	OldStatus string           `json:"old_status"`
	NewStatus string           `json:"new_status"`
	Effect    string           `json:"effect"`
	Changes   []StockChangeDTO `json:"changes"`
}
