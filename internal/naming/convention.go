package naming

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Convention translates property names between client and server.
// Implementations must round-trip: ClientToServer(ServerToClient(n)) == n.
type Convention interface {
	Name() string
	ServerToClient(serverName string) string
	ClientToServer(clientName string) string
}

// None keeps names identical on both sides.
var None Convention = noneConvention{}

type noneConvention struct{}

func (noneConvention) Name() string {
	return "none"
}

func (noneConvention) ServerToClient(s string) string {
	return s
}

func (noneConvention) ClientToServer(s string) string {
	return s
}

// CamelCase returns a convention that maps PascalCase server names to
// camelCase client names. The leading word is lower-cased as a whole,
// so "XMLData" becomes "xmlData" and "ID" becomes "id".
func CamelCase() Convention {
	return &camelCase{}
}

type camelCase struct {
	// reverse remembers translations whose inverse is not derivable,
	// e.g. "xmlData" -> "XMLData".
	reverse sync.Map
}

func (c *camelCase) Name() string {
	return "camelCase"
}

func (c *camelCase) ServerToClient(serverName string) string {
	if serverName == "" {
		return ""
	}

	tokens := Tokenize(serverName)
	if len(tokens) == 0 || strings.ContainsAny(serverName, "_- ") {
		// names with separators only get their first rune lowered
		return c.remember(lowerFirst(serverName), serverName)
	}

	first := tokens[0]
	client := strings.ToLower(first) + serverName[len(first):]

	return c.remember(client, serverName)
}

func (c *camelCase) ClientToServer(clientName string) string {
	if v, ok := c.reverse.Load(clientName); ok {
		return v.(string)
	}

	return upperFirst(clientName)
}

func (c *camelCase) remember(client, server string) string {
	if upperFirst(client) != server {
		c.reverse.Store(client, server)
	}

	return client
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// ByName returns the stock convention registered under name.
func ByName(name string) (Convention, bool) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, true
	case "camelcase", "camel":
		return CamelCase(), true
	default:
		return nil, false
	}
}
