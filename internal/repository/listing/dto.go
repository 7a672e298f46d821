package listing

import (
	"encoding/json"
	"strconv"

	domlisting "github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
)

// Reserved hash fields. Attribute fields use their registry key names;
// the engine-internal record state lives under __-prefixed fields.
const (
	fieldActive      = "__active"
	fieldPublishedAt = "__published_at"
	fieldLat         = "__lat"
	fieldLng         = "__lng"
)

// buildHashFields converts a record into a flat map[string]string for
// HSET. Multi-valued attributes are JSON-encoded arrays.
func buildHashFields(rec *domlisting.Record) map[string]string {
	m := make(map[string]string, 4+len(rec.Tags)+len(rec.Numerics)+len(rec.Sets))
	if rec.Active {
		m[fieldActive] = "1"
	} else {
		m[fieldActive] = "0"
	}
	m[fieldPublishedAt] = strconv.FormatInt(rec.PublishedAt, 10)
	if rec.Coords != nil {
		m[fieldLat] = strconv.FormatFloat(rec.Coords.Lat, 'f', -1, 64)
		m[fieldLng] = strconv.FormatFloat(rec.Coords.Lng, 'f', -1, 64)
	}
	for k, v := range rec.Tags {
		m[string(k)] = v
	}
	for k, v := range rec.Numerics {
		m[string(k)] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	for k, values := range rec.Sets {
		encoded, err := json.Marshal(values)
		if err != nil {
			continue
		}
		m[string(k)] = string(encoded)
	}
	return m
}

// parseHashFields converts a flat hash map back into a record. Field
// types are resolved through the attribute registry; unknown fields are
// ignored so schema additions stay backward compatible.
func parseHashFields(id domlisting.ID, m map[string]string) *domlisting.Record {
	rec := &domlisting.Record{
		ID:       id,
		Tags:     make(map[domlisting.Key]string),
		Numerics: make(map[domlisting.Key]float64),
		Sets:     make(map[domlisting.Key][]string),
	}

	var lat, lng *float64
	for k, v := range m {
		switch k {
		case fieldActive:
			rec.Active = v == "1"
		case fieldPublishedAt:
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				rec.PublishedAt = ts
			}
		case fieldLat:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				lat = &f
			}
		case fieldLng:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				lng = &f
			}
		default:
			key := domlisting.Key(k)
			kind, known := domlisting.KindOf(key)
			if !known {
				continue
			}
			switch kind {
			case domlisting.KindNumeric:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					rec.Numerics[key] = f
				}
			case domlisting.KindMulti:
				var values []string
				if err := json.Unmarshal([]byte(v), &values); err == nil {
					rec.Sets[key] = values
				}
			default:
				rec.Tags[key] = v
			}
		}
	}

	if lat != nil && lng != nil {
		rec.Coords = &domlisting.Coords{Lat: *lat, Lng: *lng}
	}
	return rec
}
