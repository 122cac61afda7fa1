package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

// call hace el request y falla con el body del error si el status no es 2xx.
func (c *client) call(name, method, path string, payload any) error {
	status, body, err := c.do(method, path, payload)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s fallo: status=%d body=%s", name, status, strings.TrimSpace(string(body)))
	}
	c.print(status, body)
	return nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(strings.TrimSpace(string(body)))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

// parseKV convierte ["uri=valor", ...] en mapa.
func parseKV(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("par inválido %q (esperado uri=valor)", p)
		}
		out[k] = v
	}
	return out, nil
}

func pageQuery(q url.Values, offset, length int) url.Values {
	q.Set("offset", fmt.Sprint(offset))
	if length > 0 {
		q.Set("length", fmt.Sprint(length))
	}
	return q
}

func main() {
	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:           "dirportalctl",
		Short:         "CLI para la API del directorio (/v1/directory)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", envOr("DIRPORTAL_URL", "http://localhost:8080"), "URL base del portal (env DIRPORTAL_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", os.Getenv("DIRPORTAL_TOKEN"), "token de sesión (env DIRPORTAL_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", envOr("DIRPORTAL_OUT", "text"), "Formato de salida: json|text")

	requireToken := func(*cobra.Command, []string) error {
		if cl.Token == "" {
			return fmt.Errorf("falta token (flag --token o env DIRPORTAL_TOKEN; obtenerlo con 'dirportalctl login')")
		}
		return nil
	}

	// login
	var loginUser, loginPass, loginDomain string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Autentica y devuelve el token de sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginUser == "" || loginPass == "" {
				return fmt.Errorf("--username y --password son requeridos")
			}
			return cl.call("login", http.MethodPost, "/v1/directory/auth/login", map[string]string{
				"username": loginUser, "password": loginPass, "domain": loginDomain,
			})
		},
	}
	loginCmd.Flags().StringVar(&loginUser, "username", "", "usuario")
	loginCmd.Flags().StringVar(&loginPass, "password", "", "contraseña")
	loginCmd.Flags().StringVar(&loginDomain, "domain", "", "dominio (vacío = primario)")

	// password
	var pwUser, pwOld, pwNew, pwDomain string
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Cambia la contraseña de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call("password", http.MethodPost, "/v1/directory/auth/password", map[string]string{
				"username": pwUser, "old_password": pwOld, "new_password": pwNew, "domain": pwDomain,
			})
		},
	}
	passwordCmd.Flags().StringVar(&pwUser, "username", "", "usuario")
	passwordCmd.Flags().StringVar(&pwOld, "old", "", "contraseña actual")
	passwordCmd.Flags().StringVar(&pwNew, "new", "", "contraseña nueva")
	passwordCmd.Flags().StringVar(&pwDomain, "domain", "", "dominio (vacío = primario)")

	// domains
	domainsCmd := &cobra.Command{
		Use:               "domains",
		Short:             "Lista los dominios (--primary para el primario)",
		PersistentPreRunE: requireToken,
	}
	var onlyPrimary bool
	domainsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if onlyPrimary {
			return cl.call("domains", http.MethodGet, "/v1/directory/domains/primary", nil)
		}
		return cl.call("domains", http.MethodGet, "/v1/directory/domains", nil)
	}
	domainsCmd.Flags().BoolVar(&onlyPrimary, "primary", false, "solo el dominio primario")

	// users
	usersCmd := &cobra.Command{Use: "users", Short: "Operaciones sobre usuarios", PersistentPreRunE: requireToken}

	var (
		listOffset, listLength int
		listURI, listValue     string
		listDomain             string
	)
	usersListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista usuarios con estado y grupos (filtro opcional por claim, '*' comodín)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := pageQuery(url.Values{}, listOffset, listLength)
			if listURI != "" {
				q.Set("claim_uri", listURI)
				q.Set("claim_value", listValue)
			}
			if listDomain != "" {
				q.Set("domain", listDomain)
			}
			return cl.call("users list", http.MethodGet, "/v1/directory/users?"+q.Encode(), nil)
		},
	}
	usersListCmd.Flags().IntVar(&listOffset, "offset", 0, "offset")
	usersListCmd.Flags().IntVar(&listLength, "length", 0, "tamaño de página (máx 500)")
	usersListCmd.Flags().StringVar(&listURI, "claim-uri", "", "URI del claim a filtrar")
	usersListCmd.Flags().StringVar(&listValue, "claim-value", "", "valor (acepta '*')")
	usersListCmd.Flags().StringVar(&listDomain, "domain", "", "dominio (vacío = primario)")

	usersSearchCmd := &cobra.Command{
		Use:   "search",
		Short: "Busca usuarios por valor exacto de claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listURI == "" {
				return fmt.Errorf("--claim-uri es requerido")
			}
			q := pageQuery(url.Values{"claim_uri": {listURI}, "claim_value": {listValue}}, listOffset, listLength)
			if listDomain != "" {
				q.Set("domain", listDomain)
			}
			return cl.call("users search", http.MethodGet, "/v1/directory/users/search?"+q.Encode(), nil)
		},
	}
	usersSearchCmd.Flags().IntVar(&listOffset, "offset", 0, "offset")
	usersSearchCmd.Flags().IntVar(&listLength, "length", 0, "tamaño de página (máx 500)")
	usersSearchCmd.Flags().StringVar(&listURI, "claim-uri", "", "URI del claim")
	usersSearchCmd.Flags().StringVar(&listValue, "claim-value", "", "valor exacto")
	usersSearchCmd.Flags().StringVar(&listDomain, "domain", "", "dominio (vacío = primario)")

	var (
		addClaims, addCreds []string
		addDomain           string
	)
	usersAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Da de alta un usuario (--claim uri=valor, --credential password=...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := parseKV(addClaims)
			if err != nil {
				return err
			}
			creds, err := parseKV(addCreds)
			if err != nil {
				return err
			}
			return cl.call("users add", http.MethodPost, "/v1/directory/users", map[string]any{
				"claims": claims, "credentials": creds, "domain": addDomain,
			})
		},
	}
	usersAddCmd.Flags().StringArrayVar(&addClaims, "claim", nil, "claim uri=valor (repetible)")
	usersAddCmd.Flags().StringArrayVar(&addCreds, "credential", nil, "credencial tipo=secreto (repetible)")
	usersAddCmd.Flags().StringVar(&addDomain, "domain", "", "dominio (vacío = default del store)")

	var (
		existsClaims []string
		existsDomain string
	)
	usersExistsCmd := &cobra.Command{
		Use:   "exists",
		Short: "Chequea existencia en un dominio, o lista los dominios donde existe",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := parseKV(existsClaims)
			if err != nil {
				return err
			}
			return cl.call("users exists", http.MethodPost, "/v1/directory/users/exists", map[string]any{
				"claims": claims, "domain": existsDomain,
			})
		},
	}
	usersExistsCmd.Flags().StringArrayVar(&existsClaims, "claim", nil, "claim uri=valor (repetible)")
	usersExistsCmd.Flags().StringVar(&existsDomain, "domain", "", "dominio (vacío = todos)")

	// claims
	claimsCmd := &cobra.Command{Use: "claims", Short: "Claims de un usuario", PersistentPreRunE: requireToken}

	var getURIs []string
	claimsGetCmd := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Lee claims del usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"claim": getURIs}
			return cl.call("claims get", http.MethodGet, "/v1/directory/users/"+url.PathEscape(args[0])+"/claims?"+q.Encode(), nil)
		},
	}
	claimsGetCmd.Flags().StringArrayVar(&getURIs, "claim", nil, "URI del claim (repetible)")

	var setClaims []string
	claimsSetCmd := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Actualiza claims del usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := parseKV(setClaims)
			if err != nil {
				return err
			}
			return cl.call("claims set", http.MethodPatch, "/v1/directory/users/"+url.PathEscape(args[0])+"/claims", map[string]any{"claims": claims})
		},
	}
	claimsSetCmd.Flags().StringArrayVar(&setClaims, "claim", nil, "claim uri=valor (repetible)")

	// wiring
	usersCmd.AddCommand(usersListCmd, usersSearchCmd, usersAddCmd, usersExistsCmd)
	claimsCmd.AddCommand(claimsGetCmd, claimsSetCmd)
	root.AddCommand(loginCmd, passwordCmd, domainsCmd, usersCmd, claimsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
