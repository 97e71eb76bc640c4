package treasury

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

func TestService_Report(t *testing.T) {
	ctx := context.Background()

	t.Run("Renders Both Charts", func(t *testing.T) {
		svc := NewService(&stubChain{portfolio: balancedPortfolio()}, nil)

		var buf bytes.Buffer
		require.NoError(t, svc.Report(ctx, "dao-main", &buf))

		html := buf.String()
		assert.Contains(t, html, "echarts")
		assert.Contains(t, html, "Treasury Allocation")
		assert.Contains(t, html, "Treasury Value, Trailing 30 Days")
		for _, symbol := range []string{"USDC", "ETH", "UNI", "AAVE"} {
			assert.Contains(t, html, symbol)
		}
	})

	t.Run("Empty Portfolio Is Missing Data", func(t *testing.T) {
		svc := NewService(&stubChain{portfolio: types.Portfolio{}}, nil)

		var buf bytes.Buffer
		err := svc.Report(ctx, "dao-empty", &buf)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNoData, apperr.KindOf(err))
		assert.Zero(t, buf.Len())
	})
}
