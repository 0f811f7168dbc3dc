package session

import (
	"context"
	"fmt"
	"net"

	"github.com/inconshreveable/log15"
	metrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/palace-core/palace/iptscrae/roomscript"
	"github.com/palace-core/palace/iptscrae/vm"
	"github.com/palace-core/palace/store"
)

// maxConcurrentCyborgScripts bounds how many sandboxed script
// handlers may run at once across the whole server, independent of
// how many connections are active (spec.md §4.I, §4.K; the limiter
// itself is grounded on Ethereum's use of golang.org/x/sync/semaphore
// to cap concurrent work, DESIGN.md).
const maxConcurrentCyborgScripts = 64

var (
	metricConnsAccepted  = metrics.GetOrRegisterCounter("session/conns/accepted", metrics.DefaultRegistry)
	metricConnsActive    = metrics.GetOrRegisterCounter("session/conns/active", metrics.DefaultRegistry)
	metricLogonFailures  = metrics.GetOrRegisterCounter("session/logon/failures", metrics.DefaultRegistry)
)

// Server owns the listening socket and the shared runtime state every
// accepted connection reads and writes through (spec.md §4.M, §5).
type Server struct {
	Addr       string
	ServerName string
	Store      *store.Store
	Log        log15.Logger

	Registry     *Registry
	Catalog      *Catalog
	CyborgLimits vm.Limits

	cyborgSem *semaphore.Weighted
}

// NewServer wires a Server ready to call ListenAndServe. Registry and
// Catalog are created fresh if the caller didn't already build them
// (e.g. to preload rooms before serving). Cyborg scripts run under
// vm.CyborgLimits() by default; callers may override Server.CyborgLimits
// before the first connection is accepted to apply SPEC_FULL §4.N's
// configured instruction/wall-clock ceilings instead.
func NewServer(addr, serverName string, st *store.Store, log log15.Logger) *Server {
	if log == nil {
		log = log15.New()
	}
	return &Server{
		Addr:         addr,
		ServerName:   serverName,
		Store:        st,
		Log:          log.New("component", "session"),
		Registry:     NewRegistry(),
		Catalog:      NewCatalog(),
		CyborgLimits: vm.CyborgLimits(),
		cyborgSem:    semaphore.NewWeighted(maxConcurrentCyborgScripts),
	}
}

// LoadRoomFile parses a room-template source file's text and installs
// every ROOM block it declares into the server's Catalog (spec.md
// §4.G).
func (s *Server) LoadRoomFile(source string) error {
	decls, err := roomscript.ParseRooms(source)
	if err != nil {
		return fmt.Errorf("session: parse room file: %w", err)
	}
	for _, decl := range decls {
		s.Catalog.Put(decl)
	}
	return nil
}

// ListenAndServe accepts connections on s.Addr until ctx is canceled
// or the listener fails, running each connection under an errgroup so
// a single connection's panic-free error never takes down its peers
// (spec.md §4.M, grounded on fuse.Server's accept-and-spawn loop,
// DESIGN.md).
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("session: listen on %s: %w", s.Addr, err)
	}
	defer ln.Close()
	s.Log.Info("listening", "addr", s.Addr)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-gctx.Done():
				return group.Wait()
			default:
				return fmt.Errorf("session: accept: %w", err)
			}
		}
		metricConnsAccepted.Inc(1)
		metricConnsActive.Inc(1)

		group.Go(func() error {
			defer metricConnsActive.Dec(1)
			conn := NewConn(nc, s.Registry, s.Catalog, s.Store, s.Log, s.ServerName, s.cyborgSem, s.CyborgLimits)
			if err := conn.Serve(gctx); err != nil {
				metricLogonFailures.Inc(1)
				s.Log.Debug("connection closed", "err", err)
			}
			return nil // a single bad connection must not cancel the group
		})
	}
}
