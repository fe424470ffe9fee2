package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Duddu64/economia/internal/chart"
	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/store"
)

var (
	summaryFrom int
	summaryTo   int
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f77b4"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#888888")).
			Padding(0, 2).
			MarginRight(1)
	labelStyle = lipgloss.NewStyle().Faint(true)
	valueStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d62728"))
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Mostra os indicadores principais no terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		d, err := a.loader.State().Load()
		if err != nil {
			return err
		}
		rng, err := yearRange(d, summaryFrom, summaryTo)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(d.Filter(rng), rng))
		return nil
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryFrom, "from", 0, "primeiro ano (padrão: primeiro ano dos dados)")
	summaryCmd.Flags().IntVar(&summaryTo, "to", 0, "último ano (padrão: último ano dos dados)")
}

func card(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func renderResumo(r Resumo) string {
	cards := []string{
		card("Ocupados", chart.Number(r.Ocupados, 1)+"M"),
		card("Variação", chart.Number(r.VariacaoOcupados, 1)+"%"),
		card("Informalidade", chart.Number(r.Informalidade, 1)+"%"),
		card("Conta Própria", chart.Number(r.ContaPropria, 1)+"M"),
		card("Saldo Formal", chart.Number(r.SaldoFormal, 1)+" mil"),
	}
	title := fmt.Sprintf("%s (%d-%d)", r.Setor, r.AnoInicial, r.AnoFinal)
	if r.AnosSinteticos > 0 {
		title += labelStyle.Render(fmt.Sprintf("  %d anos estimados", r.AnosSinteticos))
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func renderSummary(d loader.Dataset, rng dataset.YearRange) string {
	source := "Dados originais"
	if d.Variant == store.Updated {
		source = "Dados atualizados via API"
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("Fonte: %s, período %s", source, rng)))
	b.WriteString("\n\n")
	empty := true
	for _, s := range dataset.Sectors {
		r, ok := resumir(s, d.Sector(s))
		if !ok {
			continue
		}
		empty = false
		b.WriteString(renderResumo(r))
		b.WriteString("\n")
	}
	if empty {
		b.WriteString(warnStyle.Render("Nenhum dado no período selecionado."))
		b.WriteString("\n")
	}
	for _, w := range d.Warnings {
		b.WriteString(warnStyle.Render(w.String()))
		b.WriteString("\n")
	}
	return b.String()
}
