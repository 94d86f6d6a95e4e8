package domain

// AuthMethod describes how a caller authenticated with the API.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Principal captures normalized caller identity independent of auth mechanism.
type Principal struct {
	ID           string
	AuthMethod   AuthMethod
	Subject      string
	Issuer       string
	Username     string
	Email        string
	Capabilities []string
}

// Has checks if the principal holds a capability.
func (p Principal) Has(capability string) bool {
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
