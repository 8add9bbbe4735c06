// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/samber/lo"
)

// Aggregate folds repeated runs at the same thread count into a
// single point, sorted by thread count.
//
// The wall time of a folded point is the median wall time of its
// group, which is robust to the occasional run disturbed by other
// load on the machine. Aggregated points are not derived; call Derive
// on the result.
func Aggregate(points []*Point) []*Point {
	groups := lo.GroupBy(points, func(p *Point) int { return p.Threads })
	threads := lo.Keys(groups)
	sort.Ints(threads)

	out := make([]*Point, 0, len(threads))
	for _, t := range threads {
		group := groups[t]
		runs := 0
		xs := make([]float64, 0, len(group))
		for _, p := range group {
			xs = append(xs, p.WallTime)
			runs += p.Runs
		}
		out = append(out, &Point{
			Run:      group[0].Run,
			Threads:  t,
			WallTime: median(xs),
			Runs:     runs,
		})
	}
	return out
}

func median(xs []float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	sort.Float64s(xs)
	return stats.Sample{Xs: xs, Sorted: true}.Quantile(0.5)
}
