//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"math"
	"strconv"
	"strings"

	"github.com/pgEdge/pgedge-salesmart/internal/calendar"
)

// Record is one extracted row keyed by lower-cased column name. A nil
// value is SQL NULL; an absent key means the column was not returned.
type Record map[string]*string

func (r Record) str(col string) *string {
	return r[col]
}

func (r Record) integer(col string) *int64 {
	return ParseInt(r[col])
}

func (r Record) date(col string) calendar.Value {
	v := r[col]
	if v == nil {
		return calendar.Null()
	}
	return calendar.Text(*v)
}

// ParseInt parses an integer identifier, accepting integral decimals such
// as "12.0". It returns nil for null, blank or non-integral input.
func ParseInt(s *string) *int64 {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return nil
	}
	n := int64(f)
	return &n
}

// DecodeUser maps an extracted users row.
func DecodeUser(r Record) User {
	return User{
		ID:        r.integer(ColID),
		Username:  r.str(ColUsername),
		FirstName: r.str(ColFirstName),
		LastName:  r.str(ColLastName),
		Gender:    r.str(ColGender),
		City:      r.str(ColCity),
		Country:   r.str(ColCountry),
		CreatedAt: r.date(ColCreatedAt),
	}
}

// DecodeProduct maps an extracted products row.
func DecodeProduct(r Record) Product {
	return Product{
		ID:          r.integer(ColID),
		Code:        r.str(ColProductCode),
		Name:        r.str(ColName),
		Category:    r.str(ColCategory),
		Description: r.str(ColDescription),
		Price:       r.str(ColPrice),
		Stock:       r.str(ColStock),
		CreatedAt:   r.date(ColCreatedAt),
		UpdatedAt:   r.date(ColUpdatedAt),
	}
}

// DecodeRider maps an extracted riders row.
func DecodeRider(r Record) Rider {
	return Rider{
		ID:          r.integer(ColID),
		Name:        r.str(ColRiderName),
		FirstName:   r.str(ColFirstName),
		LastName:    r.str(ColLastName),
		VehicleType: r.str(ColVehicleType),
		Gender:      r.str(ColGender),
		Age:         r.str(ColAge),
		Courier:     r.str(ColCourierName),
	}
}

// DecodeOrderLine maps an extracted order line row.
func DecodeOrderLine(r Record) OrderLine {
	return OrderLine{
		OrderNumber:  r.str(ColOrderNumber),
		UserID:       r.integer(ColUserID),
		ProductID:    r.integer(ColProductID),
		RiderID:      r.integer(ColRiderID),
		DeliveryDate: r.date(ColDeliveryDate),
		Quantity:     r.str(ColQuantity),
		UnitPrice:    r.str(ColPrice),
	}
}
