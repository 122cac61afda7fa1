package directory

// MaxRecordLength es el tope de página que llega al identity store.
const MaxRecordLength = 500

// Etiquetas de estado de un ListEntry. Sin match, la etiqueta queda vacía.
const (
	StatusDisabled = "DISABLED"
	StatusLocked   = "LOCKED"
	StatusUnlocked = "UNLOCKED"
)

// User es la proyección de identidad que devuelve el directorio.
// Username queda vacío cuando el store no lo devuelve (alta, búsqueda).
type User struct {
	Username   string `json:"username"`
	UserID     string `json:"user_id"`
	DomainName string `json:"domain"`
}

// ListEntry es la fila de un listado de usuarios para la UI de gestión.
type ListEntry struct {
	Username     string   `json:"username,omitempty"`
	DomainName   string   `json:"domain"`
	UserUniqueID string   `json:"user_unique_id"`
	State        string   `json:"state,omitempty"`
	Groups       []string `json:"groups"`
}

