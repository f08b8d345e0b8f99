// Package countries holds the static country reference data identities point to.
package countries

import (
	"strings"

	"github.com/userhub/identity-api/internal/core/domain"
)

var defaultCountries = []domain.Country{
	{Name: "Albania", ISO: "AL"},
	{Name: "Argentina", ISO: "AR"},
	{Name: "Australia", ISO: "AU"},
	{Name: "Austria", ISO: "AT"},
	{Name: "Belgium", ISO: "BE"},
	{Name: "Brazil", ISO: "BR"},
	{Name: "Bulgaria", ISO: "BG"},
	{Name: "Canada", ISO: "CA"},
	{Name: "Chile", ISO: "CL"},
	{Name: "China", ISO: "CN"},
	{Name: "Croatia", ISO: "HR"},
	{Name: "Cyprus", ISO: "CY"},
	{Name: "Czech Republic", ISO: "CZ"},
	{Name: "Denmark", ISO: "DK"},
	{Name: "Egypt", ISO: "EG"},
	{Name: "Estonia", ISO: "EE"},
	{Name: "Finland", ISO: "FI"},
	{Name: "France", ISO: "FR"},
	{Name: "Germany", ISO: "DE"},
	{Name: "Greece", ISO: "GR"},
	{Name: "Hungary", ISO: "HU"},
	{Name: "Iceland", ISO: "IS"},
	{Name: "India", ISO: "IN"},
	{Name: "Ireland", ISO: "IE"},
	{Name: "Israel", ISO: "IL"},
	{Name: "Italy", ISO: "IT"},
	{Name: "Japan", ISO: "JP"},
	{Name: "Latvia", ISO: "LV"},
	{Name: "Lithuania", ISO: "LT"},
	{Name: "Luxembourg", ISO: "LU"},
	{Name: "Malta", ISO: "MT"},
	{Name: "Mexico", ISO: "MX"},
	{Name: "Netherlands", ISO: "NL"},
	{Name: "New Zealand", ISO: "NZ"},
	{Name: "North Macedonia", ISO: "MK"},
	{Name: "Norway", ISO: "NO"},
	{Name: "Poland", ISO: "PL"},
	{Name: "Portugal", ISO: "PT"},
	{Name: "Romania", ISO: "RO"},
	{Name: "Serbia", ISO: "RS"},
	{Name: "Slovakia", ISO: "SK"},
	{Name: "Slovenia", ISO: "SI"},
	{Name: "South Africa", ISO: "ZA"},
	{Name: "Spain", ISO: "ES"},
	{Name: "Sweden", ISO: "SE"},
	{Name: "Switzerland", ISO: "CH"},
	{Name: "Turkey", ISO: "TR"},
	{Name: "Ukraine", ISO: "UA"},
	{Name: "United Kingdom", ISO: "GB"},
	{Name: "United States", ISO: "US"},
}

// Catalog implements ports.CountryCatalog over an immutable in-memory index.
type Catalog struct {
	byName map[string]domain.Country
}

// NewCatalog indexes the given countries; with no arguments the built-in list is used.
func NewCatalog(countries ...domain.Country) *Catalog {
	if len(countries) == 0 {
		countries = defaultCountries
	}
	c := &Catalog{byName: make(map[string]domain.Country, len(countries))}
	for _, country := range countries {
		c.byName[normalize(country.Name)] = country
	}
	return c
}

// FindByName resolves a country by name, ignoring case and surrounding space.
func (c *Catalog) FindByName(name string) (domain.Country, bool) {
	country, ok := c.byName[normalize(name)]
	return country, ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
