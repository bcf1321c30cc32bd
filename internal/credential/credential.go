package credential

import (
	"errors"
	"os"
	"time"
)

// EnvToken is the environment variable consulted by EnvSource.
const EnvToken = "FUNNEL_TOKEN"

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("credential already exists")
	ErrDecrypt   = errors.New("failed to decrypt credential store (wrong password?)")
	ErrEmpty     = errors.New("credential token is empty")
)

// Credential is a named bearer token for the analytics API.
type Credential struct {
	Name        string    `json:"name"`
	Token       string    `json:"token"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
}

// Summary is a Credential without its token.
type Summary struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Hint        string    `json:"hint"`
	Created     time.Time `json:"created"`
}

// Summarize returns a Summary that only reveals the last four characters of
// the token.
func (c *Credential) Summarize() Summary {
	return Summary{
		Name:        c.Name,
		Description: c.Description,
		Hint:        Mask(c.Token),
		Created:     c.Created,
	}
}

// Mask hides all but the last four characters of a token.
func Mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// TokenSource resolves a credential name to its bearer token.
type TokenSource interface {
	Token(name string) (string, error)
}

// Provider is the interface for credential storage backends.
type Provider interface {
	TokenSource
	List() ([]Summary, error)
	Get(name string) (*Credential, error)
	Add(c Credential) error
	Update(name string, c Credential) error
	Remove(name string) error
}

// EnvSource reads a token from an environment variable regardless of the
// requested name.
type EnvSource struct {
	Var    string
	Lookup func(string) (string, bool)
}

// NewEnvSource returns an EnvSource for FUNNEL_TOKEN.
func NewEnvSource() EnvSource {
	return EnvSource{Var: EnvToken, Lookup: os.LookupEnv}
}

// Token returns the variable's value, or ErrNotFound when it is unset or
// blank.
func (e EnvSource) Token(string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(e.Var)
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Chain tries each source in order and returns the first token found.
type Chain []TokenSource

// Token returns ErrNotFound only if every source reports it.
func (c Chain) Token(name string) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		tok, err := src.Token(name)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}
