package main

import (
	"net/http"
	"time"

	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const sessionLifetime = 30 * 24 * time.Hour

// newSessionManager keeps sessions in the sessions table. A session lasts long enough for a class to
// come back to their progress the following weeks.
func newSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = sessionLifetime
	sessionManager.IdleTimeout = sessionLifetime
	sessionManager.Cookie.Name = "neveor_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Persist = true
	return sessionManager
}
