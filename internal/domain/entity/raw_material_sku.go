package entity

import "time"

// RawMaterialSku identidad de un material o producto con stock controlado.
// Inmutable una vez que alguna entrada del ledger la referencia.
type RawMaterialSku struct {
	ID        string
	Kode      string // código único, p. ej. BM-001
	Nama      string
	Satuan    string // unidad de medida, por defecto "kg"
	CreatedAt time.Time
}
