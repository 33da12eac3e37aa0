package service

import (
	"time"

	"github.com/lalith-99/campuslink/internal/catalog"
	"github.com/lalith-99/campuslink/internal/models"
)

// Announcements serves the catalog's announcements and calendar. Results are
// newest first.
type Announcements struct {
	catalog *catalog.Catalog
}

func NewAnnouncements(cat *catalog.Catalog) *Announcements {
	return &Announcements{catalog: cat}
}

// ForBranch returns announcements for one branch and year selection.
func (a *Announcements) ForBranch(branch models.Branch, year models.Year) []models.Announcement {
	return a.filter(func(an models.Announcement) bool { return an.Visible(branch, year) })
}

// General returns announcements addressed to every branch.
func (a *Announcements) General() []models.Announcement {
	return a.filter(func(an models.Announcement) bool { return an.Branch == models.BranchAll })
}

func (a *Announcements) Recent() []models.Announcement {
	return a.filter(func(an models.Announcement) bool { return an.IsNew })
}

func (a *Announcements) Past() []models.Announcement {
	return a.filter(func(an models.Announcement) bool { return !an.IsNew })
}

func (a *Announcements) EventsOn(day time.Time) []catalog.Event {
	return a.catalog.EventsOn(day)
}

func (a *Announcements) filter(keep func(models.Announcement) bool) []models.Announcement {
	out := make([]models.Announcement, 0)
	for _, an := range a.catalog.Announcements {
		if keep(an) {
			out = append(out, an)
		}
	}
	return out
}
