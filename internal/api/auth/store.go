package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/memstore"
	gsessions "github.com/gorilla/sessions"
	"github.com/jon4hz/naijamap/internal/config"
)

// sessionRotate marks a session whose ID must be replaced on the next save.
const sessionRotate = "_rotate"

// rotatingStore issues a new session ID when Login asks for it and drops the server-side
// data of the old ID. Cookie sessions carry no ID, so for them only the marker is removed.
type rotatingStore struct {
	sessions.Store
}

// NewStore creates the session store for the configured backend.
func NewStore(kind config.SessionStore, keyPairs ...[]byte) sessions.Store {
	var inner sessions.Store
	switch kind {
	case config.SessionStoreCookie:
		inner = cookie.NewStore(keyPairs...)
	default:
		inner = memstore.NewStore(keyPairs...)
	}
	return &rotatingStore{Store: inner}
}

// Get registers the session with this store so saves go through Save below.
func (r *rotatingStore) Get(req *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(req).Get(r, name)
}

func (r *rotatingStore) Save(req *http.Request, w http.ResponseWriter, s *gsessions.Session) error {
	if _, ok := s.Values[sessionRotate]; !ok {
		return r.Store.Save(req, w, s)
	}
	delete(s.Values, sessionRotate)

	if s.ID != "" {
		opts := *s.Options
		opts.MaxAge = -1
		stale := gsessions.NewSession(r.Store, s.Name())
		stale.ID = s.ID
		stale.Options = &opts
		if err := r.Store.Save(req, discardWriter{header: http.Header{}}, stale); err != nil {
			return err
		}
		s.ID = ""
	}
	return r.Store.Save(req, w, s)
}

// discardWriter swallows the expiry cookie of the old session.
type discardWriter struct {
	header http.Header
}

func (d discardWriter) Header() http.Header { return d.header }

func (discardWriter) Write(b []byte) (int, error) { return len(b), nil }

func (discardWriter) WriteHeader(int) {}
