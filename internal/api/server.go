// Package api exposes the users and tasks services over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"

	"service-mesh/internal/config"
	"service-mesh/internal/metrics"
	"service-mesh/internal/service"
)

var logger = loggo.GetLogger("servicemesh.api")

// Options carries what both services share: naming, mounting, health and
// instrumentation.
type Options struct {
	// Name is shown in the welcome message, e.g. "Users".
	Name string
	// RootPath is an optional prefix the routes are also served under.
	RootPath    string
	Ping        Pinger
	PingTimeout time.Duration
	// Metrics records request counts and latencies when set.
	Metrics *metrics.HTTP
	// Gatherer is exposed on /metrics when set.
	Gatherer  prometheus.Gatherer
	RateLimit config.RateLimit
}

// NewUsersHandler returns the HTTP handler of the users service.
func NewUsersHandler(users *service.UserService, opts Options) http.Handler {
	a := &usersAPI{users: users}
	return newRouter(opts, a.register)
}

// NewTasksHandler returns the HTTP handler of the tasks service.
func NewTasksHandler(tasks *service.TaskService, opts Options) http.Handler {
	a := &tasksAPI{tasks: tasks}
	return newRouter(opts, a.register)
}

func newRouter(opts Options, register func(*mux.Router)) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, detail{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, detail{Detail: "Method Not Allowed"})
	})

	mount := func(sub *mux.Router) {
		sub.HandleFunc("/", rootHandler(opts.Name)).Methods(http.MethodGet)
		for _, p := range []string{"/health", "/health/"} {
			sub.HandleFunc(p, healthHandler(opts.Ping, opts.PingTimeout)).Methods(http.MethodGet)
		}
		register(sub)
	}
	if opts.RootPath != "" {
		prefixed := r.PathPrefix(opts.RootPath).Subrouter()
		prefixed.HandleFunc("", rootHandler(opts.Name)).Methods(http.MethodGet)
		mount(prefixed)
	}
	mount(r)
	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer)).Methods(http.MethodGet)
	}

	r.Use(withRequestID, instrument(opts.Metrics), recoverPanics)

	var h http.Handler = r
	if opts.RateLimit.Enabled {
		h = newRateLimiter(opts.RateLimit).middleware(h)
	}
	return h
}
