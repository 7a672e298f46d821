// Package sortorder defines the result ordering strategies.
package sortorder

// Order selects how matched listings are ordered before pagination.
type Order string

const (
	// DateDesc orders by publication date, newest first. The default.
	DateDesc Order = "date_desc"
	// DistanceAsc orders by distance from the geo-circle center, nearest
	// first. Only valid when the query carries a geo constraint.
	DistanceAsc Order = "distance_asc"
)

// IsValid reports whether the order is a known strategy.
func (o Order) IsValid() bool {
	return o == DateDesc || o == DistanceAsc
}
