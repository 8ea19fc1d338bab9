// internal/domain/locale/locale.go
package locale

import "strings"

// Country describes one entry of the storefront country selector.
type Country struct {
	Href  string `json:"href"`
	Flag  string `json:"flag"`
	Name  string `json:"name"`
	Param string `json:"param"`
	Tag   string `json:"locale"`
}

// DefaultCountry is the locale assumed when the path carries no country
// prefix.
const DefaultCountry = "us"

// Countries lists the locales the storefront can serve, in selector order.
var Countries = []Country{
	{Href: "/", Flag: "flagUS", Name: "United States (US)", Param: "us", Tag: "en-US"},
	{Href: "/uk/", Flag: "flagUK", Name: "United Kingdom (UK)", Param: "uk", Tag: "en-GB"},
	{Href: "/eu/", Flag: "flagEU", Name: "European Union (EU)", Param: "eu", Tag: "en-DE"},
	{Href: "/ca/", Flag: "flagCA", Name: "Canada (CA)", Param: "ca", Tag: "en-CA"},
}

// Locale is the resolved country context for a request path.
type Locale struct {
	IsDefault       bool   `json:"isDefaultLocale"`
	BaseURI         string `json:"baseUri"`
	CommerceBaseURI string `json:"commerceBaseUri"`
	CountryCode     string `json:"countryCode"`
	CountryName     string `json:"countryName"`
	CountryFlag     string `json:"countryFlag"`
	Href            string `json:"href"`
	Tag             string `json:"locale"`
}

// Resolve derives the locale from a request path. The first path segment
// selects the country; unknown segments fall back to the default country.
// The default country keeps an empty commerce base URI (its commerce
// endpoints live at the root).
func Resolve(path string) Locale {
	detected := ""
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			detected = part
			break
		}
	}
	if detected == "" {
		detected = DefaultCountry
	}

	meta := find(detected)
	if meta == nil {
		meta = find(DefaultCountry)
	}

	baseURI := "/" + meta.Param
	commerceBaseURI := baseURI
	if meta.Param == DefaultCountry {
		commerceBaseURI = ""
	}

	return Locale{
		IsDefault:       meta.Param == DefaultCountry,
		BaseURI:         baseURI,
		CommerceBaseURI: commerceBaseURI,
		CountryCode:     meta.Param,
		CountryName:     meta.Name,
		CountryFlag:     meta.Flag,
		Href:            meta.Href,
		Tag:             meta.Tag,
	}
}

// Enabled filters the country list against a set of disabled country
// params (from the published disabled-locales sheet). Unknown params are
// ignored.
func Enabled(disabled map[string]bool) []Country {
	out := make([]Country, 0, len(Countries))
	for _, c := range Countries {
		if disabled[c.Param] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func find(param string) *Country {
	for i := range Countries {
		if Countries[i].Param == param {
			return &Countries[i]
		}
	}
	return nil
}
