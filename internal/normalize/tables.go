//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Canonical placeholders for controlled vocabularies.
const (
	OtherGender   = "Other"
	Uncategorized = "Uncategorized"
	OtherRegion   = "Other"
)

// Tables bundles every lookup table a transform run needs.
type Tables struct {
	Gender    *Vocabulary
	Vehicle   *Vocabulary
	Category  *Vocabulary
	Continent *Vocabulary
	Courier   *Corrections
}

var genderSynonyms = map[string]string{
	"m":      "Male",
	"male":   "Male",
	"f":      "Female",
	"female": "Female",
}

var vehicleSynonyms = map[string]string{
	"motorbike":  "Motorcycle",
	"motorcycle": "Motorcycle",
	"bike":       "Bicycle",
	"bicycle":    "Bicycle",
	"trike":      "Tricycle",
	"tricycle":   "Tricycle",
	"car":        "Car",
}

var categorySynonyms = map[string]string{
	"electronics":   "Electronics",
	"gadgets":       "Electronics",
	"gadget":        "Electronics",
	"toys":          "Toys",
	"toy":           "Toys",
	"bags":          "Bags",
	"bag":           "Bags",
	"makeup":        "Makeup",
	"make up":       "Makeup",
	"make-up":       "Makeup",
	"clothing":      "Clothing",
	"clothes":       "Clothing",
	"men's apparel": "Men's Apparel",
	"mens apparel":  "Men's Apparel",
}

var courierTypos = map[string]string{
	"FEDEZ": "FEDEX",
}

var continentCountries = map[string][]string{
	"Asia": {
		"Afghanistan", "Armenia", "Azerbaijan", "Bahrain", "Bangladesh", "Bhutan",
		"Brunei Darussalam", "Cambodia", "China", "Cyprus", "Georgia", "Hong Kong",
		"India", "Indonesia", "Iran", "Iraq", "Israel", "Japan", "Jordan", "Kazakhstan",
		"Kuwait", "Kyrgyz Republic", "Lao People's Democratic Republic", "Lebanon",
		"Macao", "Malaysia", "Maldives", "Mongolia", "Myanmar", "Nepal",
		"Democratic People's Republic of Korea", "Oman", "Pakistan", "Palestine",
		"Philippines", "Qatar", "Republic of Korea", "Russian Federation",
		"Saudi Arabia", "Singapore", "Sri Lanka", "Syrian Arab Republic", "Taiwan",
		"Tajikistan", "Thailand", "Timor-Leste", "Turkey", "Turkmenistan",
		"United Arab Emirates", "Uzbekistan", "Vietnam", "Yemen",
	},
	"Europe": {
		"Aland Islands", "Albania", "Andorra", "Austria", "Belarus", "Belgium",
		"Bosnia and Herzegovina", "Bulgaria", "Croatia", "Czechia", "Denmark",
		"Estonia", "Faroe Islands", "Finland", "France", "Germany", "Gibraltar",
		"Greece", "Guernsey", "Holy See (Vatican City State)", "Hungary", "Iceland",
		"Ireland", "Isle of Man", "Italy", "Jersey", "Latvia", "Liechtenstein",
		"Lithuania", "Luxembourg", "Malta", "Moldova", "Monaco", "Montenegro",
		"Netherlands", "North Macedonia", "Norway", "Poland", "Portugal", "Romania",
		"San Marino", "Serbia", "Slovakia", "Slovenia", "Spain",
		"Svalbard & Jan Mayen Islands", "Sweden", "Switzerland", "Ukraine",
		"United Kingdom",
	},
	"North America": {
		"Anguilla", "Antigua and Barbuda", "Aruba", "Bahamas", "Barbados", "Belize",
		"Bermuda", "Bonaire, Sint Eustatius and Saba", "Canada", "Cayman Islands",
		"Costa Rica", "Cuba", "Curacao", "Dominica", "Dominican Republic",
		"El Salvador", "Greenland", "Grenada", "Guadeloupe", "Guatemala", "Haiti",
		"Honduras", "Jamaica", "Martinique", "Mexico", "Montserrat", "Nicaragua",
		"Panama", "Puerto Rico", "Saint Barthelemy", "Saint Kitts and Nevis",
		"Saint Lucia", "Saint Martin", "Saint Pierre and Miquelon",
		"Saint Vincent and the Grenadines", "Sint Maarten", "Trinidad and Tobago",
		"Turks and Caicos Islands", "United States", "United States of America",
		"Virgin Islands, U.S.", "Virgin Islands, British",
	},
	"South America": {
		"Argentina", "Bolivia", "Brazil", "Chile", "Colombia", "Ecuador",
		"Falkland Islands (Malvinas)", "French Guiana", "Guyana", "Paraguay", "Peru",
		"Suriname", "Uruguay", "Venezuela",
	},
	"Africa": {
		"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi",
		"Cameroon", "Cape Verde", "Central African Republic", "Chad", "Comoros",
		"Congo", "Democratic Republic of the Congo", "Cote d'Ivoire", "Djibouti",
		"Egypt", "Equatorial Guinea", "Eritrea", "Eswatini", "Ethiopia", "Gabon",
		"Gambia", "Ghana", "Guinea", "Guinea-Bissau", "Kenya", "Lesotho", "Liberia",
		"Libyan Arab Jamahiriya", "Madagascar", "Malawi", "Mali", "Mauritania",
		"Mauritius", "Mayotte", "Morocco", "Mozambique", "Namibia", "Niger",
		"Nigeria", "Reunion", "Rwanda", "Saint Helena", "Sao Tome and Principe",
		"Senegal", "Seychelles", "Sierra Leone", "Somalia", "South Africa",
		"South Sudan", "Sudan", "Tanzania", "Togo", "Tunisia", "Uganda",
		"Western Sahara", "Zambia", "Zimbabwe",
	},
	"Oceania": {
		"American Samoa", "Australia", "Christmas Island", "Cocos (Keeling) Islands",
		"Cook Islands", "Fiji", "French Polynesia", "Guam", "Kiribati",
		"Marshall Islands", "Micronesia", "Nauru", "New Caledonia", "New Zealand",
		"Niue", "Norfolk Island", "Northern Mariana Islands", "Palau",
		"Papua New Guinea", "Pitcairn Islands", "Samoa", "Solomon Islands",
		"Tokelau", "Tonga", "Tuvalu", "United States Minor Outlying Islands",
		"Vanuatu", "Wallis and Futuna",
	},
	"Antarctica": {
		"Antarctica", "Bouvet Island", "French Southern Territories",
		"Heard Island and McDonald Islands",
		"South Georgia and the South Sandwich Islands",
	},
}

func countryContinents() map[string]string {
	m := make(map[string]string)
	for continent, countries := range continentCountries {
		for _, country := range countries {
			m[country] = continent
		}
	}
	return m
}

// Default returns the built-in tables.
func Default() *Tables {
	return &Tables{
		Gender:    NewVocabulary(genderSynonyms, FallbackPlaceholder, OtherGender),
		Vehicle:   NewVocabulary(vehicleSynonyms, FallbackCapitalize, Unknown),
		Category:  NewVocabulary(categorySynonyms, FallbackPlaceholder, Uncategorized),
		Continent: NewVocabulary(countryContinents(), FallbackPlaceholder, OtherRegion),
		Courier:   NewCorrections(courierTypos),
	}
}

// Overrides holds extra synonyms layered over the built-in tables, as read
// from a vocabulary file.
type Overrides struct {
	Gender    map[string]string `yaml:"gender"`
	Vehicle   map[string]string `yaml:"vehicle"`
	Category  map[string]string `yaml:"category"`
	Continent map[string]string `yaml:"continent"`
	Courier   map[string]string `yaml:"courier"`
}

// LoadOverrides reads a YAML vocabulary file.
func LoadOverrides(path string) (Overrides, error) {
	var o Overrides
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}
	return o, nil
}

// With returns new tables with o merged on top of t.
func (t *Tables) With(o Overrides) *Tables {
	return &Tables{
		Gender:    t.Gender.Merge(o.Gender),
		Vehicle:   t.Vehicle.Merge(o.Vehicle),
		Category:  t.Category.Merge(o.Category),
		Continent: t.Continent.Merge(o.Continent),
		Courier:   t.Courier.Merge(o.Courier),
	}
}

// Load returns the default tables, extended by the vocabulary file at path
// when path is not empty.
func Load(path string) (*Tables, error) {
	tables := Default()
	if path == "" {
		return tables, nil
	}
	o, err := LoadOverrides(path)
	if err != nil {
		return nil, err
	}
	return tables.With(o), nil
}

// ContinentOf returns the continent for a normalized country name.
func (t *Tables) ContinentOf(country string) string {
	return t.Continent.Normalize(country)
}
