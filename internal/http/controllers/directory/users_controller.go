package directory

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dir "github.com/dropDatabas3/dirportal/internal/directory"
	dto "github.com/dropDatabas3/dirportal/internal/http/dto/directory"
	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	"github.com/dropDatabas3/dirportal/internal/http/helpers"
)

// UsersController maneja alta, existencia, claims y listados de usuarios.
type UsersController struct {
	service dir.Service
}

func NewUsersController(service dir.Service) *UsersController {
	return &UsersController{service: service}
}

// Add maneja POST /v1/directory/users
func (c *UsersController) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddUserRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	var (
		user *dir.User
		err  error
	)
	if strings.TrimSpace(req.Domain) == "" {
		user, err = c.service.AddUser(r.Context(), req.Claims, req.Credentials)
	} else {
		user, err = c.service.AddUserInDomain(r.Context(), req.Claims, req.Credentials, req.Domain)
	}
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, user)
}

// Exists maneja POST /v1/directory/users/exists
func (c *UsersController) Exists(w http.ResponseWriter, r *http.Request) {
	var req dto.ExistsRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if strings.TrimSpace(req.Domain) == "" {
		domains, err := c.service.ListDomainsWithUser(r.Context(), req.Claims)
		if err != nil {
			httperrors.WriteError(w, httperrors.FromDirectory(err))
			return
		}
		helpers.WriteJSON(w, http.StatusOK, dto.DomainsWithUserResponse{Domains: domains})
		return
	}

	exists, err := c.service.IsUserExist(r.Context(), req.Claims, req.Domain)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ExistsResponse{Exists: exists})
}

// page lee offset/length del query string ya acotados.
func page(r *http.Request) (int, int, error) {
	offset, err := helpers.QueryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	length, err := helpers.QueryInt(r, "length", dir.MaxRecordLength)
	if err != nil {
		return 0, 0, err
	}
	offset, length = dir.PageBounds(offset, length)
	return offset, length, nil
}

// List maneja GET /v1/directory/users
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	offset, length, err := page(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	entries, err := c.service.GetFilteredList(r.Context(), offset, length, q.Get("claim_uri"), q.Get("claim_value"), q.Get("domain"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Entries: entries, Offset: offset, Length: length})
}

// Search maneja GET /v1/directory/users/search
func (c *UsersController) Search(w http.ResponseWriter, r *http.Request) {
	offset, length, err := page(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("claim_uri")) == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("claim_uri is required"))
		return
	}

	users, err := c.service.ListUsers(r.Context(), q.Get("claim_uri"), q.Get("claim_value"), offset, length, q.Get("domain"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UsersResponse{Users: users, Offset: offset, Length: length})
}

// Claims maneja GET /v1/directory/users/{id}/claims?claim=<uri>
func (c *UsersController) Claims(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims, err := c.service.GetClaimsOfUser(r.Context(), id, r.URL.Query()["claim"])
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	out := dto.ClaimsResponse{UserID: id, Claims: make([]dto.Claim, 0, len(claims))}
	for _, cl := range claims {
		out.Claims = append(out.Claims, dto.Claim{Dialect: cl.DialectURI, URI: cl.ClaimURI, Value: cl.Value})
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// UpdateClaims maneja PATCH /v1/directory/users/{id}/claims
func (c *UsersController) UpdateClaims(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateClaimsRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := c.service.UpdateUserProfile(r.Context(), chi.URLParam(r, "id"), req.Claims); err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
