package entity

// CookieKey identifies a cookie within the jar.
type CookieKey struct {
	Domain string
	Name   string
}

// Cookie is a cached (domain, name) -> value entry.
type Cookie struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// Key returns the cookie's jar key.
func (c Cookie) Key() CookieKey {
	return CookieKey{Domain: c.Domain, Name: c.Name}
}
