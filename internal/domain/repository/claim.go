package repository

// Claim es un atributo (dialect, uri, value) de un usuario o grupo.
// El store puede devolver varios claims con el mismo URI.
type Claim struct {
	DialectURI string
	ClaimURI   string
	Value      string
}

// MetaClaim selecciona un claim por URI, sin valor asociado.
type MetaClaim struct {
	DialectURI string
	ClaimURI   string
}

// FirstValue devuelve el valor del primer claim con el URI dado.
// El segundo retorno es false si no hay ninguno.
func FirstValue(claims []Claim, claimURI string) (string, bool) {
	for _, c := range claims {
		if c.ClaimURI == claimURI {
			return c.Value, true
		}
	}
	return "", false
}
