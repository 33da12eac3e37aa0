package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Branch is an engineering department. BranchAll targets every branch.
type Branch string

const (
	BranchAll Branch = "All"
	BranchCSE Branch = "CSE"
	BranchCV  Branch = "CV"
	BranchME  Branch = "ME"
	BranchECE Branch = "ECE"
	BranchEEE Branch = "EEE"
)

// Branches lists the selectable departments, in display order.
var Branches = []Branch{BranchCSE, BranchCV, BranchME, BranchECE, BranchEEE}

// ParseBranch accepts a branch name in any case.
func ParseBranch(s string) (Branch, error) {
	for _, b := range append([]Branch{BranchAll}, Branches...) {
		if strings.EqualFold(string(b), s) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown branch %q", s)
}

// Year is a study year 1-4. The zero value is YearAll.
type Year int

const YearAll Year = 0

// ParseYear accepts "All" or 1-4.
func ParseYear(s string) (Year, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return YearAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return YearAll, fmt.Errorf("invalid year %q", s)
	}
	return Year(n), nil
}

func (y Year) String() string {
	if y == YearAll {
		return "All"
	}
	return strconv.Itoa(int(y))
}

// Label is the human form used on announcement cards.
func (y Year) Label() string {
	switch y {
	case YearAll:
		return "All Years"
	case 1:
		return "1st Year"
	case 2:
		return "2nd Year"
	case 3:
		return "3rd Year"
	}
	return fmt.Sprintf("%dth Year", int(y))
}

// MarshalJSON writes "All" or a bare number.
func (y Year) MarshalJSON() ([]byte, error) {
	if y == YearAll {
		return []byte(`"All"`), nil
	}
	return []byte(strconv.Itoa(int(y))), nil
}

func (y *Year) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := ParseYear(s)
		if err != nil {
			return err
		}
		*y = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	v, err := ParseYear(strconv.Itoa(n))
	if err != nil {
		return err
	}
	*y = v
	return nil
}

func (y *Year) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseYear(node.Value)
	if err != nil {
		return err
	}
	*y = v
	return nil
}

// Announcement is read-only broadcast content scoped by branch and year.
type Announcement struct {
	ID       int    `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Date     string `json:"date" yaml:"date"`
	Category string `json:"category" yaml:"category"`
	IsNew    bool   `json:"is_new" yaml:"is_new"`
	Branch   Branch `json:"branch" yaml:"branch"`
	Year     Year   `json:"year" yaml:"year"`
}

// Visible reports whether the announcement shows up for a branch/year
// selection: the branch must match exactly, and the year matches when either
// side is All or both are equal.
func (a Announcement) Visible(branch Branch, year Year) bool {
	if a.Branch != branch {
		return false
	}
	return year == YearAll || a.Year == YearAll || a.Year == year
}
