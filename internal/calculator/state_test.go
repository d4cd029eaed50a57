package calculator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"joarchive/internal/calculator"
)

func Test_Calculator(t *testing.T) {
	t.Run("should start empty", func(t *testing.T) {
		c := calculator.New()

		for _, category := range calculator.Categories {
			require.Empty(t, c.Weights()[category])
		}
	})

	t.Run("should append zero weights without limit", func(t *testing.T) {
		c := calculator.New()
		for i := 0; i < 50; i++ {
			c.AddWeight(calculator.Gold18K)
		}

		weights := c.Weights()[calculator.Gold18K]
		require.Len(t, weights, 50)
		for _, w := range weights {
			require.Zero(t, w)
		}
	})

	t.Run("should coerce non numeric input to zero", func(t *testing.T) {
		c := calculator.New()
		c.AddWeight(calculator.Gold14K)
		c.AddWeight(calculator.Gold14K)

		c.UpdateWeight(calculator.Gold14K, 0, "2.5")
		c.UpdateWeight(calculator.Gold14K, 1, "two grams")

		require.Equal(t, []float64{2.5, 0}, c.Weights()[calculator.Gold14K])
	})

	t.Run("should ignore out of range indexes and unknown categories", func(t *testing.T) {
		c := calculator.New()
		c.AddWeight(calculator.Silver)

		require.NotPanics(t, func() {
			c.UpdateWeight(calculator.Silver, 3, "1")
			c.UpdateWeight(calculator.Silver, -1, "1")
			c.RemoveWeight(calculator.Silver, 9)
			c.RemoveWeight(calculator.Gold18K, 0)
			c.AddWeight(calculator.Category("platinum"))
		})

		weights := c.Weights()
		require.Equal(t, []float64{0}, weights[calculator.Silver])
		require.NotContains(t, weights, calculator.Category("platinum"))
	})

	t.Run("should shift entries down on removal and reduce total by the removed subtotal", func(t *testing.T) {
		c := calculator.FromInput(map[string][]string{"gold_14k": {"1", "2", "3", "4"}})

		before := calculator.ComputeTotal(c.Breakdown(scenarioPrices))
		removed := c.Breakdown(scenarioPrices)[calculator.Gold14K][1].Subtotal

		c.RemoveWeight(calculator.Gold14K, 1)

		require.Equal(t, []float64{1, 3, 4}, c.Weights()[calculator.Gold14K])
		after := calculator.ComputeTotal(c.Breakdown(scenarioPrices))
		require.InDelta(t, before-removed, after, 1e-9)
	})

	t.Run("should not alias the returned weights", func(t *testing.T) {
		c := calculator.FromInput(map[string][]string{"silver": {"1", "2"}})

		snapshot := c.Weights()
		c.RemoveWeight(calculator.Silver, 0)

		require.Equal(t, []float64{1, 2}, snapshot[calculator.Silver])
	})

	t.Run("should clear every category on reset", func(t *testing.T) {
		c := calculator.FromInput(map[string][]string{
			"gold_14k": {"1"},
			"gold_18k": {"2"},
			"silver":   {"3"},
			"bronze":   {"4"},
		})

		c.Reset()

		require.Zero(t, calculator.ComputeTotal(c.Breakdown(scenarioPrices)))
		for _, category := range calculator.Categories {
			require.Empty(t, c.Weights()[category])
		}
	})
}
