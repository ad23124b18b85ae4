package e2etest

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/WingsGames/Neve-Or/internal/errors"
)

// unsafeCookieJar keeps the session cookie over plain HTTP. The server marks it Secure, which a standard
// jar would only send over TLS.
type unsafeCookieJar struct {
	*cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return &unsafeCookieJar{Jar: jar}, nil
}

func (j *unsafeCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		c.Secure = false
	}
	j.Jar.SetCookies(u, cookies)
}
