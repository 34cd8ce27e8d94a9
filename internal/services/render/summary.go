package render

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"GlyphCore/internal/domain/models"
)

// Summary renders the signal fields and their statistics as a box table.
func Summary(sig models.Signal) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"field", "value"})
	tw.AppendRows([]table.Row{
		{"direction", sig.Direction},
		{"momentum", sig.Momentum},
		{"regime", sig.Regime},
		{"strength", fmt.Sprintf("%.3f", sig.Strength)},
		{"confidence", fmt.Sprintf("%.3f", sig.Confidence)},
	})
	tw.AppendSeparator()
	st := sig.Stats
	tw.AppendRows([]table.Row{
		{"points", st.Points},
		{"net / range", fmt.Sprintf("%+.3f", st.Net)},
		{"net / level", fmt.Sprintf("%+.4f", st.Move)},
		{"efficiency", fmt.Sprintf("%.3f", st.Efficiency)},
		{"volatility", fmt.Sprintf("%.4f", st.Volatility)},
		{"slope early/late", fmt.Sprintf("%+.2f / %+.2f", st.SlopeEarly, st.SlopeLate)},
	})
	return tw.Render()
}
