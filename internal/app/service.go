package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/auth"
	"github.com/shrimpsizemoose/kladdkaka/internal/bus"
	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/scoring"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// User-facing conflict/rejection errors. Handlers map these to messages,
// everything else is a generic failure with a retry notification.
var (
	ErrCourseCodeTaken = errors.New("course code already exists")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrAccountLocked   = errors.New("account is locked or inactive")
	ErrScoreLocked     = errors.New("score row is locked")
	ErrCourseNotDraft  = errors.New("only draft courses can be deleted")
)

// Service owns the page-level business rules on top of the engine: the
// uniqueness pre-checks, status transitions, grade derivation and audit
// trail that the storage engine deliberately does not enforce.
type Service struct {
	Config *Config
	Store  store.Engine
	Bus    *bus.Bus
	Grader *scoring.Grader
	Tokens *auth.TokenManager
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	b := bus.New()
	if config.Bus.RedisURL != "" {
		relay, err := bus.NewRedisRelay(config.Bus.RedisURL, config.Bus.Channel)
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to init bus relay: %w", err)
		}
		b.AttachRelay(relay)
	}

	var tokens *auth.TokenManager
	if config.Server.EnableAuth {
		tokens, err = auth.NewTokenManager(
			config.Auth.RedisURL,
			config.Auth.TokenKeyTemplate,
			config.TokenTTL(),
		)
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to init token manager: %w", err)
		}
	}

	grader := scoring.NewGrader(
		engine,
		config.Scoring.Weights,
		config.Scoring.LateDaysModifiers,
		config.Scoring.DefaultLatePenalty,
		config.Scoring.MaxLateDays,
		config.Scoring.ExtraLatePenalty,
	)

	return &Service{
		Config: config,
		Store:  engine,
		Bus:    b,
		Grader: grader,
		Tokens: tokens,
	}, nil
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

// Audit appends an activity record. Best-effort: a failed audit write is
// logged but never aborts the action it describes.
func (s *Service) Audit(userID, action, target, details string) {
	entry := models.NewAuditLog(userID, action, target, details)
	doc, err := store.ToDocument(&entry)
	if err != nil {
		logger.Error.Printf("failed to encode audit entry: %v", err)
		return
	}
	if _, err := s.Store.Add("audit_logs", doc); err != nil {
		logger.Error.Printf("failed to append audit entry %s/%s: %v", action, target, err)
	}
}

func (s *Service) ListAuditLogs() ([]models.AuditLog, error) {
	docs, err := s.Store.GetAll("audit_logs")
	if err != nil {
		return nil, err
	}
	logs := make([]models.AuditLog, 0, len(docs))
	for _, doc := range docs {
		var entry models.AuditLog
		if err := store.FromDocument(doc, &entry); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// ClearAuditLogs bulk-deletes the trail and records who did it.
func (s *Service) ClearAuditLogs(actorID, sourceID string) error {
	if err := s.Store.Clear("audit_logs"); err != nil {
		return err
	}
	s.Audit(actorID, "audit.clear", "audit_logs", "")
	s.Bus.Emit("audit_logs", sourceID)
	return nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("bus: %w", err))
	}
	if err := s.Tokens.Close(); err != nil {
		errs = append(errs, fmt.Errorf("tokens: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
