package ledger

import "time"

// SetProjectionClock reemplaza el reloj de las proyecciones; Summary lo llama durante la construcción.
func SetProjectionClock(uc *ProjectionUseCase, now func() time.Time) { uc.now = now }
