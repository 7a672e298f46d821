package query

import (
	"context"
	"fmt"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/geo"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
)

// applyRadius narrows candidate ids to those within the circle. The
// bounding box rejects the bulk cheaply; the exact great-circle
// distance (inclusive <=) is authoritative. Listings without
// coordinates are excluded silently. Returns the surviving ids in
// input order plus their distances for distance-ascending sort.
func (q *querier) applyRadius(
	ctx context.Context, ids []listing.ID, circle filter.GeoCircle,
) ([]listing.ID, map[listing.ID]float64, error) {
	if len(ids) == 0 {
		return nil, map[listing.ID]float64{}, nil
	}

	box, err := geo.BoundingBox(circle.Lat(), circle.Lng(), circle.RadiusKm())
	if err != nil {
		// The circle was validated at construction; a failure here is a bug.
		return nil, nil, fmt.Errorf("bounding box: %w", err)
	}

	records, err := q.getRecords(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	kept := make([]listing.ID, 0, len(ids))
	distances := make(map[listing.ID]float64, len(ids))
	for _, id := range ids {
		rec, ok := records[id]
		if !ok || rec.Coords == nil {
			continue
		}
		if !box.Contains(rec.Coords.Lat, rec.Coords.Lng) {
			continue
		}
		d := geo.DistanceKm(circle.Lat(), circle.Lng(), rec.Coords.Lat, rec.Coords.Lng)
		if d <= circle.RadiusKm() {
			kept = append(kept, id)
			distances[id] = d
		}
	}
	return kept, distances, nil
}
