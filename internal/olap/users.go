package olap

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UserSales is one user's sales, joined to the user's attributes.
type UserSales struct {
	UserKey     int64
	Username    string
	FullName    string
	Gender      string
	City        string
	Country     string
	Continent   string
	SalesAmount decimal.Decimal
	TotalOrders int
}

// UserSales sums sales and counts distinct orders per user, restricted to
// users matching f. Users without sales are omitted. Rows are ordered by
// user key.
func (e *Engine) UserSales(f Filter) ([]UserSales, error) {
	m, err := f.compile(UserAttributes...)
	if err != nil {
		return nil, err
	}

	g := newGroups[int64]()
	for i := range e.snap.Sales {
		fact := &e.snap.Sales[i]
		u, ok := e.users[fact.CustomerKey]
		if !ok {
			continue
		}
		if !m.allows(AttrContinent, u.Continent) || !m.allows(AttrCountry, u.Country) ||
			!m.allows(AttrCity, u.City) || !m.allows(AttrGender, u.Gender) {
			continue
		}
		g.add(u.UserKey, fact)
	}

	out := make([]UserSales, 0, len(g.keys))
	for _, key := range g.keys {
		u := e.users[key]
		ms := g.get(key)
		out = append(out, UserSales{
			UserKey:     u.UserKey,
			Username:    u.Username,
			FullName:    u.FullName,
			Gender:      u.Gender,
			City:        u.City,
			Country:     u.Country,
			Continent:   u.Continent,
			SalesAmount: ms.sales,
			TotalOrders: len(ms.orders),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserKey < out[j].UserKey })
	return out, nil
}

// UserAttributeValues lists the distinct values of each filterable user
// attribute.
type UserAttributeValues struct {
	Continents []string `json:"continents"`
	Countries  []string `json:"countries"`
	Cities     []string `json:"cities"`
	Genders    []string `json:"genders"`
}

// DistinctUserAttributes returns the sorted distinct values present in
// dim_user for every user filter attribute.
func (e *Engine) DistinctUserAttributes() UserAttributeValues {
	continents := make(map[string]struct{})
	countries := make(map[string]struct{})
	cities := make(map[string]struct{})
	genders := make(map[string]struct{})
	for _, u := range e.snap.Users {
		continents[u.Continent] = struct{}{}
		countries[u.Country] = struct{}{}
		cities[u.City] = struct{}{}
		genders[u.Gender] = struct{}{}
	}
	return UserAttributeValues{
		Continents: sortedDistinct(continents),
		Countries:  sortedDistinct(countries),
		Cities:     sortedDistinct(cities),
		Genders:    sortedDistinct(genders),
	}
}
