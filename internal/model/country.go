package model

import (
	"fmt"
	"strings"
)

// Country is a selectable country and the invitation link for its group
type Country struct {
	Name       string
	InviteLink string
}

// CountryTable is an ordered, read-only set of recognized countries
type CountryTable struct {
	countries []Country
	byName    map[string]Country
}

// NewCountryTable builds a table, rejecting empty or duplicate names
func NewCountryTable(countries ...Country) (CountryTable, error) {
	if len(countries) == 0 {
		return CountryTable{}, fmt.Errorf("%w: no countries", ErrInvalidCountryTable)
	}

	t := CountryTable{
		countries: make([]Country, 0, len(countries)),
		byName:    make(map[string]Country, len(countries)),
	}
	for _, c := range countries {
		if c.Name == "" || c.InviteLink == "" {
			return CountryTable{}, fmt.Errorf("%w: country %q needs a name and a link", ErrInvalidCountryTable, c.Name)
		}
		if _, dup := t.byName[c.Name]; dup {
			return CountryTable{}, fmt.Errorf("%w: duplicate country %q", ErrInvalidCountryTable, c.Name)
		}
		t.countries = append(t.countries, c)
		t.byName[c.Name] = c
	}
	return t, nil
}

// ParseCountryTable parses "Name=Link" entries in display order
func ParseCountryTable(entries []string) (CountryTable, error) {
	countries := make([]Country, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, link, ok := strings.Cut(entry, "=")
		if !ok {
			return CountryTable{}, fmt.Errorf("%w: entry %q is not Name=Link", ErrInvalidCountryTable, entry)
		}
		countries = append(countries, Country{
			Name:       strings.TrimSpace(name),
			InviteLink: strings.TrimSpace(link),
		})
	}
	return NewCountryTable(countries...)
}

// DefaultCountryTable returns the countries the tournament launched with
func DefaultCountryTable() CountryTable {
	t, _ := NewCountryTable(
		Country{Name: "Ethiopia", InviteLink: "https://t.me/+o3zMT7hAbIU3Y2E0"},
		Country{Name: "Nigeria", InviteLink: "https://t.me/+GaqELk8BynxmMmRk"},
	)
	return t
}

// Countries returns the countries in display order
func (t CountryTable) Countries() []Country {
	result := make([]Country, len(t.countries))
	copy(result, t.countries)
	return result
}

// Lookup returns the country with the given name
func (t CountryTable) Lookup(name string) (Country, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// InviteLink returns the group link for a country
func (t CountryTable) InviteLink(name string) (string, bool) {
	c, ok := t.byName[name]
	if !ok {
		return "", false
	}
	return c.InviteLink, true
}
