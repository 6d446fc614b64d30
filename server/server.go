package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dekarrin/diceroll"
	"github.com/dekarrin/diceroll/server/dao"
	"golang.org/x/crypto/bcrypt"
)

// Server wires a Config's persistence layer and engine Roller to the chi
// router produced by API, and owns the *http.Server built on top of it.
type Server struct {
	api API
	db  dao.Store
	srv *http.Server
}

// New connects cfg's configured database and builds a Server ready to
// ServeForever. The caller owns the returned Server's lifetime and must
// eventually call Close.
func New(cfg Config, roller *diceroll.Roller, addr string) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	api := API{
		DB:          db,
		Roller:      roller,
		Secret:      cfg.TokenSecret,
		UnauthDelay: cfg.UnauthDelay(),
	}

	srv := &Server{
		api: api,
		db:  db,
		srv: &http.Server{
			Addr:    addr,
			Handler: api.Router(),
		},
	}
	return srv, nil
}

// ServeForever blocks, serving HTTP requests until ctx is canceled, then
// attempts a graceful shutdown with a bounded grace period.
func (s *Server) ServeForever(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return s.db.Close()
	}
}

// ListenForInterrupt runs ServeForever against a context canceled on
// SIGINT/SIGTERM, the shape cmd/dicerollserver actually uses.
func (s *Server) ListenForInterrupt() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return s.ServeForever(ctx)
}

// CreateAPIKey bcrypt-hashes secret and persists a new dao.APIKey named
// name, the bootstrap step a fresh deployment needs to issue its first
// token. A duplicate name surfaces as dao.ErrConstraintViolation.
func (s *Server) CreateAPIKey(ctx context.Context, name, secret string) (dao.APIKey, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return dao.APIKey{}, fmt.Errorf("hash secret: %w", err)
	}

	key, err := s.db.APIKeys().Create(ctx, dao.APIKey{Name: name, SecretHash: hash})
	if err != nil {
		return dao.APIKey{}, err
	}
	return key, nil
}

// GenerateRandomSecret returns a cryptographically random token secret sized
// to MaxSecretSize, for use when no secret is configured. Every token issued
// under it becomes invalid the moment the process exits.
func GenerateRandomSecret() ([]byte, error) {
	secret := make([]byte, MaxSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	log.Printf("WARN  using generated token secret; all tokens issued will become invalid at shutdown")
	return secret, nil
}
