package model

// Silhouette returns the mean silhouette width of a clustering under the
// k-prototypes dissimilarity. Rows alone in their cluster score 0.
func Silhouette(X *Features, c *Clustering) float64 {
	n := X.Len()
	if n == 0 || c.K < 2 {
		return 0
	}

	total := 0.0
	sums := make([]float64, c.K)
	for i := 0; i < n; i++ {
		for k := range sums {
			sums[k] = 0
		}
		row := Prototype{Numeric: X.Numeric[i], Categorical: X.Categorical[i]}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[c.Labels[j]-1] += Dissimilarity(X.Numeric[j], X.Categorical[j], row, c.Lambda)
		}

		own := c.Labels[i] - 1
		if c.Sizes[own] <= 1 {
			continue
		}
		a := sums[own] / float64(c.Sizes[own]-1)
		b := -1.0
		for k, s := range sums {
			if k == own || c.Sizes[k] == 0 {
				continue
			}
			if m := s / float64(c.Sizes[k]); b < 0 || m < b {
				b = m
			}
		}
		if b < 0 {
			continue
		}
		if den := max(a, b); den > 0 {
			total += (b - a) / den
		}
	}
	return total / float64(n)
}

// SizeShares returns each cluster's fraction of rows.
func SizeShares(c *Clustering) []float64 {
	n := 0
	for _, s := range c.Sizes {
		n += s
	}
	out := make([]float64, len(c.Sizes))
	if n == 0 {
		return out
	}
	for k, s := range c.Sizes {
		out[k] = float64(s) / float64(n)
	}
	return out
}

// BetweenShare is the fraction of the one-cluster cost explained by the
// clustering: 1 - WCSS(k) / WCSS(1).
func BetweenShare(totalCost float64, c *Clustering) float64 {
	if totalCost <= 0 {
		return 0
	}
	return 1 - c.TotalWithinSS/totalCost
}
