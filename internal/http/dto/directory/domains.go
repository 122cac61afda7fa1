package directory

type DomainsResponse struct {
	Domains []string `json:"domains"`
}

type PrimaryDomainResponse struct {
	Domain string `json:"domain"`
}
