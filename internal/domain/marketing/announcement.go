package marketing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/swas/backend/internal/domain/shared"
)

// FormatAnnouncementID builds ANN-<n>
func FormatAnnouncementID(seq int64) string {
	return fmt.Sprintf("ANN-%d", seq)
}

// ParseAnnouncementNumber returns n of ANN-<n>, or 0 when id has another shape
func ParseAnnouncementNumber(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, "ANN-"), 10, 64)
	if err != nil || !strings.HasPrefix(id, "ANN-") {
		return 0
	}
	return n
}

// Announcement is a notice shown to customers, for one branch or all of them
type Announcement struct {
	shared.BaseAggregateRoot
	AnnouncementID string
	Title          string
	Description    string
	Date           time.Time
	// BranchID is empty for shop-wide announcements
	BranchID string
}

// NewAnnouncement creates an announcement dated now
func NewAnnouncement(id, title, description, branchID string) (*Announcement, error) {
	a := &Announcement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AnnouncementID:    id,
		BranchID:          branchID,
		Date:              time.Now(),
	}
	if err := a.Update(title, description); err != nil {
		return nil, err
	}
	a.Version = 1
	return a, nil
}

// Update replaces title and description
func (a *Announcement) Update(title, description string) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return shared.NewDomainError("INVALID_ANNOUNCEMENT", "Title and description are required")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_ANNOUNCEMENT", "Title cannot exceed 200 characters")
	}
	a.Title = title
	a.Description = description
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
