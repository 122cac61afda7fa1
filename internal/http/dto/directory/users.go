package directory

import dir "github.com/dropDatabas3/dirportal/internal/directory"

// AddUserRequest: claims y credenciales como mapas URI -> valor.
// Domain vacío da de alta en el dominio por defecto del store.
type AddUserRequest struct {
	Claims      map[string]string `json:"claims"`
	Credentials map[string]string `json:"credentials"`
	Domain      string            `json:"domain,omitempty"`
}

// ExistsRequest: con Domain responde {exists}, sin Domain {domains}.
type ExistsRequest struct {
	Claims map[string]string `json:"claims"`
	Domain string            `json:"domain,omitempty"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type DomainsWithUserResponse struct {
	Domains []string `json:"domains"`
}

type UpdateClaimsRequest struct {
	Claims map[string]string `json:"claims"`
}

type Claim struct {
	Dialect string `json:"dialect,omitempty"`
	URI     string `json:"uri"`
	Value   string `json:"value"`
}

type ClaimsResponse struct {
	UserID string  `json:"user_id"`
	Claims []Claim `json:"claims"`
}

// UsersResponse es la respuesta de /users/search.
type UsersResponse struct {
	Users  []dir.User `json:"users"`
	Offset int        `json:"offset"`
	Length int        `json:"length"`
}

// ListResponse es la respuesta de /users.
type ListResponse struct {
	Entries []dir.ListEntry `json:"entries"`
	Offset  int             `json:"offset"`
	Length  int             `json:"length"`
}
