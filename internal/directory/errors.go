package directory

import "errors"

// Kind clasifica los errores que devuelve el directorio.
type Kind int

const (
	// KindInfrastructure: falla del identity store. Mensaje opaco.
	KindInfrastructure Kind = iota
	// KindClientUsage: argumentos inválidos, detectados antes de llamar al store.
	KindClientUsage
	// KindNotFound: la entidad pedida no existe.
	KindNotFound
	// KindConflict: el usuario ya existe con ese username.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindClientUsage:
		return "client_usage"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "infrastructure"
	}
}

// Error es el error que cruza el límite del directorio.
// Error() devuelve solo Message; la causa se loguea, no se propaga.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Mensajes públicos.
const (
	MsgInvalidCredentials   = "Invalid credentials."
	MsgStoreUnavailable     = "Identity store is not available."
	MsgUpdatePasswordFailed = "Failed to update user password."
	MsgAddUserFailed        = "Error while adding user."
	MsgUserExistFailed      = "Error while checking whether the user exists."
	MsgUpdateProfileFailed  = "Failed to update user profile."
	MsgInvalidUserID        = "Invalid unique user id."
	MsgGetClaimsFailed      = "Failed to get claims of the user."
	MsgGetGroupsFailed      = "Failed to get groups of the user."
	MsgDomainNamesFailed    = "Failed to get the domain names."
	MsgPrimaryDomainFailed  = "Failed to get the primary domain name."
	MsgListUsersFailed      = "Error while listing users."
	MsgRetrieveUsersFailed  = "Error while retrieving users."
	MsgUserNotFound         = "User not found."
	MsgUserAlreadyExists    = "User already exists."
	MsgMissingCredentials   = "Username and password are required."
)

func clientUsage(msg string) *Error    { return &Error{Kind: KindClientUsage, Message: msg} }
func notFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func infrastructure(msg string) *Error { return &Error{Kind: KindInfrastructure, Message: msg} }
func conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }

// KindOf devuelve el Kind de err. Un error que no es *Error se trata
// como infraestructura.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInfrastructure
}

// IsKind indica si err es un *Error del Kind dado.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}
