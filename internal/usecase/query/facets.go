package query

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/result"
)

// mergeFn folds one facet's computed table into the shared output.
// Computation runs concurrently; merging runs single-threaded after
// every sub-query finished, so the output maps never see concurrent
// writes.
type mergeFn func(*result.FacetCounts)

type facetTask func(ctx context.Context) (mergeFn, error)

// countFacets computes the what-if table for every eligible facet: the
// facet's own constraint removed, all other constraints (including the
// geo circle) kept. One store sub-query per facet, fanned out over a
// bounded number of goroutines. Any failure cancels the remaining
// sub-queries and aborts the whole table.
func (s *Service) countFacets(
	ctx context.Context, q *querier, spec filter.Spec,
) (*result.FacetCounts, error) {
	var tasks []facetTask

	for _, key := range listing.EnumFacets() {
		key := key
		tasks = append(tasks, func(ctx context.Context) (mergeFn, error) {
			table, err := s.enumTable(ctx, q, spec, key)
			if err != nil {
				return nil, err
			}
			return func(fc *result.FacetCounts) { fc.Values[key] = table }, nil
		})
	}

	for _, key := range listing.RangeFacets() {
		key := key
		tasks = append(tasks, func(ctx context.Context) (mergeFn, error) {
			minTable, maxTable, err := s.rangeTables(ctx, q, spec, key)
			if err != nil {
				return nil, err
			}
			return func(fc *result.FacetCounts) {
				fc.MinCumulative[key] = minTable
				fc.MaxCumulative[key] = maxTable
			}, nil
		})
	}

	if selectedMake, ok := exactValue(spec, listing.Make); ok {
		tasks = append(tasks, func(ctx context.Context) (mergeFn, error) {
			table, err := s.dependentTable(ctx, q, spec, listing.Model, map[listing.Key]string{
				listing.Make: selectedMake,
			})
			if err != nil {
				return nil, err
			}
			return func(fc *result.FacetCounts) { fc.ModelByMake[selectedMake] = table }, nil
		})

		if selectedModel, ok := exactValue(spec, listing.Model); ok {
			tasks = append(tasks, func(ctx context.Context) (mergeFn, error) {
				table, err := s.dependentTable(ctx, q, spec, listing.Variant, map[listing.Key]string{
					listing.Make:  selectedMake,
					listing.Model: selectedModel,
				})
				if err != nil {
					return nil, err
				}
				return func(fc *result.FacetCounts) {
					fc.VariantByModel[selectedMake] = map[string]result.Table{
						selectedModel: table,
					}
				}, nil
			})
		}
	}

	merges, err := s.runTasks(ctx, tasks)
	if err != nil {
		return nil, err
	}

	fc := result.NewFacetCounts()
	for _, merge := range merges {
		merge(fc)
	}
	return fc, nil
}

// runTasks fans the facet sub-queries out over a bounded goroutine
// pool. Each task's result lands in its own slot; the first error
// cancels the rest.
func (s *Service) runTasks(ctx context.Context, tasks []facetTask) ([]mergeFn, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parallelism := s.facetParallelism
	if parallelism < 1 {
		parallelism = 1
	}
	sem := make(chan struct{}, parallelism)

	merges := make([]mergeFn, len(tasks))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task facetTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			merge, err := task(ctx)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			merges[i] = merge
		}(i, task)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	for _, m := range merges {
		if m == nil {
			// A task saw the cancelled context and never produced its
			// table. Partial tables would be misleading, so the whole
			// count fails.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, errors.New("facet sub-query did not complete")
		}
	}
	return merges, nil
}

// subQueryIDs resolves "spec minus this facet" to an id set, applying
// the geo circle when present. An empty base set is a valid outcome.
func (s *Service) subQueryIDs(
	ctx context.Context, q *querier, sub filter.Spec,
) ([]listing.ID, error) {
	ids, err := q.findMatching(ctx, sub.Constraints())
	if err != nil {
		return nil, err
	}
	if circle := sub.Geo(); circle != nil {
		ids, _, err = q.applyRadius(ctx, ids, *circle)
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// enumTable tallies attribute values over the facet's sub-query. A
// multi-valued attribute increments every value it carries.
func (s *Service) enumTable(
	ctx context.Context, q *querier, spec filter.Spec, key listing.Key,
) (result.Table, error) {
	ids, err := s.subQueryIDs(ctx, q, spec.Without(key))
	if err != nil {
		return nil, err
	}
	records, err := q.getRecords(ctx, ids)
	if err != nil {
		return nil, err
	}

	table := result.Table{}
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		if listing.IsMulti(key) {
			for _, v := range rec.Sets[key] {
				table[v]++
			}
			continue
		}
		if v, ok := rec.Tag(key); ok {
			table[v]++
		}
	}
	return table, nil
}

// rangeTables builds the cumulative count tables for a numeric facet:
// for every distinct value V among remaining listings, the min-side
// table counts listings with attribute ≥ V and the max-side table
// counts attribute ≤ V. A bound selector can then show "how many if I
// moved this bound here".
func (s *Service) rangeTables(
	ctx context.Context, q *querier, spec filter.Spec, key listing.Key,
) (minTable, maxTable result.Table, err error) {
	ids, err := s.subQueryIDs(ctx, q, spec.Without(key))
	if err != nil {
		return nil, nil, err
	}
	records, err := q.getRecords(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var values []float64
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		if v, ok := rec.Numeric(key); ok {
			values = append(values, v)
		}
	}
	sort.Float64s(values)

	minTable, maxTable = result.Table{}, result.Table{}
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		label := formatBound(v)
		// First index ≥ v is i itself (values sorted, v is first of its run).
		minTable[label] = len(values) - i
		// Count ≤ v: first index strictly greater than v.
		gt := sort.Search(len(values), func(j int) bool { return values[j] > v })
		maxTable[label] = gt
	}
	return minTable, maxTable, nil
}

// dependentTable tallies a dependent facet (model, variant) with its
// own constraint removed and the parent selection kept. Listings whose
// parent attributes disagree with the selection are skipped: attribute
// data has been inconsistent enough in the wild to warrant the
// double-check.
func (s *Service) dependentTable(
	ctx context.Context, q *querier, spec filter.Spec,
	key listing.Key, parents map[listing.Key]string,
) (result.Table, error) {
	ids, err := s.subQueryIDs(ctx, q, spec.Without(key))
	if err != nil {
		return nil, err
	}
	records, err := q.getRecords(ctx, ids)
	if err != nil {
		return nil, err
	}

	table := result.Table{}
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		consistent := true
		for parentKey, want := range parents {
			if have, ok := rec.Tag(parentKey); !ok || have != want {
				consistent = false
				break
			}
		}
		if !consistent {
			continue
		}
		if v, ok := rec.Tag(key); ok {
			table[v]++
		}
	}
	return table, nil
}

// exactValue returns the exact-match value of a constraint, if the
// attribute is constrained that way. Dependent facet counts are only
// defined for a single selected parent, so value-set parents yield no
// table.
func exactValue(spec filter.Spec, key listing.Key) (string, bool) {
	c, ok := spec.Get(key)
	if !ok || !c.IsExact() {
		return "", false
	}
	return c.Exact(), true
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
