package service

import (
	"database/sql"

	"github.com/lifedash/portfolio-engine/internal/database"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// HealthCheck checks the health of the system
func (s *SystemService) HealthCheck() error {
	return database.HealthCheck(s.db)
}
