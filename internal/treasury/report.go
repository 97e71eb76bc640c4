package treasury

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const (
	chartWidth  = "960px"
	chartHeight = "440px"
)

// Report renders a self-contained HTML report for the treasury: current
// allocation pie plus the trailing 30-day value line.
func (s *Service) Report(ctx context.Context, address string, w io.Writer) error {
	portfolio, err := s.chain.Treasury(ctx, address)
	if err != nil {
		return err
	}
	if totalValue(portfolio) <= 0 {
		return apperr.NoData("portfolio", address)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = fmt.Sprintf("Treasury Report %s", address)
	page.AddCharts(allocationPie(address, portfolio), valueLine(portfolio))
	return page.Render(w)
}

func allocationPie(address string, p types.Portfolio) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Treasury Allocation",
			Subtitle: fmt.Sprintf("%s | $%.0f", address, totalValue(p)),
			Left:     "left",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	items := make([]opts.PieData, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		items = append(items, opts.PieData{Name: h.Symbol, Value: h.ValueUSD})
	}
	pie.AddSeries("allocation", items).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
	)
	return pie
}

func valueLine(p types.Portfolio) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Treasury Value, Trailing 30 Days", Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
	)

	end := p.LastUpdated
	if end.IsZero() {
		end = time.Now().UTC()
	}
	n := len(p.DailyValues)
	xAxis := make([]string, n)
	data := make([]opts.LineData, n)
	for i, v := range p.DailyValues {
		xAxis[i] = end.AddDate(0, 0, i-(n-1)).Format("01-02")
		data[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("value_usd", data, charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
