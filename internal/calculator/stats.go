package calculator

// mean returns the arithmetic mean of prices. Callers guarantee len(prices) > 0.
func mean(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}
