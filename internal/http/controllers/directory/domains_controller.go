package directory

import (
	"net/http"

	dir "github.com/dropDatabas3/dirportal/internal/directory"
	dto "github.com/dropDatabas3/dirportal/internal/http/dto/directory"
	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	"github.com/dropDatabas3/dirportal/internal/http/helpers"
)

type DomainsController struct {
	service dir.Service
}

func NewDomainsController(service dir.Service) *DomainsController {
	return &DomainsController{service: service}
}

// List maneja GET /v1/directory/domains
func (c *DomainsController) List(w http.ResponseWriter, r *http.Request) {
	names, err := c.service.GetDomainNames(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DomainsResponse{Domains: names})
}

// Primary maneja GET /v1/directory/domains/primary
func (c *DomainsController) Primary(w http.ResponseWriter, r *http.Request) {
	name, err := c.service.GetPrimaryDomainName(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.FromDirectory(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PrimaryDomainResponse{Domain: name})
}
