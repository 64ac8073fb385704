package handlers

import (
	"gorm.io/gorm"

	"ideabox/internal/metrics"
	"ideabox/internal/repository"
	"ideabox/internal/scheduler"
	mailsync "ideabox/internal/sync"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db           *gorm.DB
	repo         *repository.Repository
	orchestrator *mailsync.Orchestrator
	syncOpts     mailsync.Options
	scheduler    *scheduler.Scheduler
	metrics      *metrics.Metrics
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, repo *repository.Repository, orchestrator *mailsync.Orchestrator, syncOpts mailsync.Options, s *scheduler.Scheduler, m *metrics.Metrics) *Handlers {
	return &Handlers{
		db:           db,
		repo:         repo,
		orchestrator: orchestrator,
		syncOpts:     syncOpts,
		scheduler:    s,
		metrics:      m,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
