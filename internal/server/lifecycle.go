// Package server supervises the harness's long-running services: the
// spectator feed, the content watcher, the recorder health check and the
// simulation itself. Services start in registration order and stop in
// reverse order, so the simulation always winds down before the feeds it
// publishes to.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is one supervised component. Start blocks for the service's whole
// life and returns nil on a clean exit; Stop asks the service to wind down.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle supervises the harness services. Unlike a daemon supervisor it
// treats any clean service exit as the end of the run: when the simulation
// finishes its encounters, everything registered around it is wound down.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// serviceExit is one service leaving Start, cleanly or not.
type serviceExit struct {
	name string
	err  error
}

// NewLifecycle creates a new Lifecycle supervisor.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Services are started in the order they
// are added and stopped in the reverse order.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// AddPoll registers a service that invokes poll on a fixed interval until
// shutdown. Poll failures are logged as warnings and never end the run;
// the harness uses this for the telemetry recorder's health check.
//
// Precondition: interval must be positive; poll must be non-nil.
func (l *Lifecycle) AddPoll(name string, interval time.Duration, poll func() error) {
	done := make(chan struct{})
	l.Add(name, &FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					if err := poll(); err != nil {
						l.logger.Warn("poll failed",
							zap.String("service", name),
							zap.Error(err),
						)
					}
				}
			}
		},
		StopFn: func() { close(done) },
	})
}

// Run starts every registered service and blocks until one of them exits,
// a termination signal arrives (SIGINT or SIGTERM), or ctx ends. It then
// stops all services in reverse order.
//
// Postcondition: every service's Stop has returned; the first service
// error, if any, is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(l.services))
	for _, ns := range l.services {
		ns := ns
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Start()
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			}
			exits <- serviceExit{name: ns.name, err: err}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var failure error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case exit := <-exits:
		if exit.err != nil {
			failure = fmt.Errorf("service %s: %w", exit.name, exit.err)
		} else {
			l.logger.Info("service finished, shutting down",
				zap.String("service", exit.name),
			)
		}
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.shutdown()

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return failure
}

// shutdown stops services in reverse registration order.
func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		ns := l.services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("elapsed", time.Since(shutdownStart)),
	)
}
