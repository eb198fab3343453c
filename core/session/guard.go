package session

// The guard gates every navigation on the Store's state. It is a
// three-state machine with no terminal state:
//
//	Loading ──(initialize: no session)──▶ Unauthenticated
//	Loading ──(initialize: session)─────▶ Authenticated
//	Unauthenticated ──(login)───────────▶ Authenticated
//	Authenticated ──(logout | 401)──────▶ Unauthenticated

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Views the guard can resolve to, besides the requested route itself.
const (
	ViewLoading = "loading"
	ViewLogin   = "login"

	// DefaultLanding is where unknown routes redirect once
	// authenticated.
	DefaultLanding = "dashboard"
)

type Guard struct {
	store  *Store
	routes map[string]bool
}

// NewGuard wires the guard to the store and the set of navigable
// routes of the authenticated application.
func NewGuard(store *Store, routes ...string) *Guard {
	known := make(map[string]bool, len(routes))
	for _, r := range routes {
		known[r] = true
	}
	return &Guard{store: store, routes: known}
}

func (g *Guard) State() State {
	if g.store.IsLoading() {
		return StateLoading
	}
	if g.store.IsAuthenticated() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// Resolve maps a requested route to the view that must render.
// While loading, only the progress view renders: neither the login
// form nor protected content may flash. Unauthenticated sessions see
// the login view whatever the requested path. Authenticated sessions
// get the requested route, with unknown paths redirected to the
// default landing.
func (g *Guard) Resolve(path string) string {
	switch g.State() {
	case StateLoading:
		return ViewLoading
	case StateUnauthenticated:
		return ViewLogin
	}
	if g.routes[path] {
		return path
	}
	return DefaultLanding
}
