// Package catalog holds the static content the service ships with: the
// navigation table, selectable interests and skills, announcements, calendar
// events and team registration payment methods.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lalith-99/campuslink/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type NavItem struct {
	Href  string `json:"href" yaml:"href"`
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Tag is a selectable interest or skill.
type Tag struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Event struct {
	Date     string `json:"date" yaml:"date"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
}

type PaymentMethod struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Catalog struct {
	// DefaultProfilePicture is assigned to new students.
	DefaultProfilePicture string `yaml:"default_profile_picture"`

	Navigation     []NavItem             `yaml:"navigation"`
	Interests      []Tag                 `yaml:"interests"`
	Skills         []Tag                 `yaml:"skills"`
	Announcements  []models.Announcement `yaml:"announcements"`
	Events         []Event               `yaml:"events"`
	CategoryColors map[string]string     `yaml:"category_colors"`
	PaymentMethods []PaymentMethod       `yaml:"payment_methods"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	// Announcements are served newest first.
	sort.SliceStable(c.Announcements, func(i, j int) bool {
		return c.Announcements[i].Date > c.Announcements[j].Date
	})
	return &c, nil
}

func (c *Catalog) check() error {
	for _, a := range c.Announcements {
		if _, err := models.ParseBranch(string(a.Branch)); err != nil {
			return fmt.Errorf("announcement %d: %w", a.ID, err)
		}
	}
	for _, e := range c.Events {
		if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
			return fmt.Errorf("event %q: bad date: %w", e.Title, err)
		}
	}
	return nil
}

// HasInterest reports whether name is a selectable interest.
func (c *Catalog) HasInterest(name string) bool {
	return hasTag(c.Interests, name)
}

// HasSkill reports whether name is a selectable skill.
func (c *Catalog) HasSkill(name string) bool {
	return hasTag(c.Skills, name)
}

func hasTag(tags []Tag, name string) bool {
	_, ok := canonical(tags, name)
	return ok
}

// Interest returns the catalog spelling of an interest name.
func (c *Catalog) Interest(name string) (string, bool) {
	return canonical(c.Interests, name)
}

// Skill returns the catalog spelling of a skill name.
func (c *Catalog) Skill(name string) (string, bool) {
	return canonical(c.Skills, name)
}

func canonical(tags []Tag, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return t.Name, true
		}
	}
	return "", false
}

// PaymentMethod looks a method up by id.
func (c *Catalog) PaymentMethod(id string) (PaymentMethod, bool) {
	for _, m := range c.PaymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

// EventsOn returns the calendar events falling on the given day.
func (c *Catalog) EventsOn(day time.Time) []Event {
	want := day.Format(time.DateOnly)
	events := make([]Event, 0)
	for _, e := range c.Events {
		if e.Date == want {
			events = append(events, e)
		}
	}
	return events
}
