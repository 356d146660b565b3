// Package server exposes the simulation engine over HTTP for the
// visualization client: simulation control, tutorials, and a few
// monitoring endpoints for the process itself.
package server

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/tutorial"
)

// A Simulator is the engine surface the server drives. One simulation at a
// time; all methods are safe for concurrent use.
type Simulator interface {
	Start(cfg mem.Config) (mem.Snapshot, error)
	Execute(req mem.OperationRequest) (mem.Snapshot, error)
	Reset()
	Snapshot() (mem.Snapshot, error)
	Results() (mem.Results, error)
}

// Request-layer bounds on start parameters. The core only checks
// positivity and divisibility; the visualization keeps simulations small
// enough to render.
const (
	maxMemorySize = 4096
	maxPageSize   = 512
)

// Defaults applied to under-specified requests.
const (
	defaultMemorySize = 1024
	defaultPageSize   = 64
	defaultAllocSize  = 64
)

// A Server drives a Simulator from HTTP requests.
type Server struct {
	simulator  Simulator
	tutorials  *tutorial.Manager
	logger     logrus.FieldLogger
	portNumber int
}

// NewServer creates a server around the given simulator.
func NewServer(simulator Simulator) *Server {
	return &Server{
		simulator: simulator,
		tutorials: tutorial.NewManager(),
		logger:    logrus.StandardLogger(),
	}
}

// WithPortNumber sets the port the server listens on. Port 0 picks a free
// port.
func (s *Server) WithPortNumber(portNumber int) *Server {
	s.portNumber = portNumber
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(logger logrus.FieldLogger) *Server {
	s.logger = logger
	return s
}

// Router builds the HTTP routes. Exposed so tests can drive the handlers
// without a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/start_simulation", s.startSimulation).
		Methods(http.MethodPost)
	r.HandleFunc("/api/next_step", s.nextStep).Methods(http.MethodPost)
	r.HandleFunc("/api/get_results", s.getResults).Methods(http.MethodGet)
	r.HandleFunc("/api/reset_simulation", s.resetSimulation).
		Methods(http.MethodPost)

	r.HandleFunc("/api/tutorials", s.listTutorials).Methods(http.MethodGet)
	r.HandleFunc("/api/tutorials/start", s.startTutorial).
		Methods(http.MethodPost)
	r.HandleFunc("/api/tutorials/next", s.tutorialNext).
		Methods(http.MethodPost)
	r.HandleFunc("/api/tutorials/previous", s.tutorialPrevious).
		Methods(http.MethodPost)
	r.HandleFunc("/api/tutorials/end", s.endTutorial).Methods(http.MethodPost)
	r.HandleFunc("/api/tutorials/current", s.currentTutorialStep).
		Methods(http.MethodGet)

	r.HandleFunc("/api/resource", s.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", s.collectProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/inspect", s.inspectEngine).Methods(http.MethodGet)

	return r
}

// StartServer starts serving requests in the background and returns the
// URL the server listens on.
func (s *Server) StartServer() string {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.portNumber))
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Serving memory simulation on %s\n", url)

	router := s.Router()
	go func() {
		dieOnErr(http.Serve(listener, router))
	}()

	return url
}
