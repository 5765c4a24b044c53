// FilePath: server/hub/internal/models/models.location.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Location is the place a set of environment readings belongs to (a balcony, a greenhouse, a windowsill)
type Location struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Validate checks the user-editable fields
func (l *Location) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(l.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	return nil
}
