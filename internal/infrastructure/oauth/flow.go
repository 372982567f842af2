package oauth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	StateCookieName = "__oauth_state"
	PKCECookieName  = "__oauth_pkce"
	flowTTL         = 5 * time.Minute
)

// Flow issues and checks the short-lived state and PKCE cookies that bind an
// authorization redirect to its callback.
type Flow struct {
	Secure bool
}

// Begin generates state and a PKCE verifier, stores both in cookies and
// returns them for the authorization URL.
func (f Flow) Begin(w http.ResponseWriter) (state, verifier string) {
	state = oauth2.GenerateVerifier()
	verifier = oauth2.GenerateVerifier()

	f.set(w, StateCookieName, state)
	f.set(w, PKCECookieName, verifier)
	return state, verifier
}

// Finish checks the returned state against its cookie and yields the PKCE
// verifier. Both cookies are cleared either way.
func (f Flow) Finish(w http.ResponseWriter, r *http.Request) (string, bool) {
	defer f.clear(w, StateCookieName)
	defer f.clear(w, PKCECookieName)

	returned := r.URL.Query().Get("state")
	if returned == "" {
		return "", false
	}
	sc, err := r.Cookie(StateCookieName)
	if err != nil || subtle.ConstantTimeCompare([]byte(sc.Value), []byte(returned)) != 1 {
		return "", false
	}
	pc, err := r.Cookie(PKCECookieName)
	if err != nil || pc.Value == "" {
		return "", false
	}
	return pc.Value, true
}

func (f Flow) set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowTTL.Seconds()),
	})
}

func (f Flow) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   f.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
