package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/chart"
	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/store"
)

// Arquivos do pacote exportado.
const (
	joinFile   = "dados_combinados.csv"
	resumoFile = "resumo.csv"
	chartsDir  = "graficos"
)

var (
	exportFrom int
	exportTo   int
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Empacota os dados filtrados e os gráficos num zip",
	Long: `Gera um zip com a junção das duas tabelas setoriais no período
(colunas com sufixo _construcao e _imob), o resumo por setor e um HTML por
gráfico de cada visualização.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		d, err := a.loader.State().Load()
		if err != nil {
			return err
		}
		rng, err := yearRange(d, exportFrom, exportTo)
		if err != nil {
			return err
		}

		rates, err := a.client.Series(cmd.Context(), cfg.BCB.Series, cfg.History(time.Now()))
		if err != nil {
			// o pacote sai sem os juros, como no painel
			logger.Warn("interest series unavailable", zap.Error(err))
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("economia-%d-%d.zip", rng.Start, rng.End)
		}
		files, err := exportZip(d.Filter(rng), rates, rng, out)
		if err != nil {
			return err
		}
		logger.Info("export done", zap.String("zip", out), zap.Int("files", files), zap.String("variant", d.Variant.String()))
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportFrom, "from", 0, "primeiro ano (padrão: primeiro ano dos dados)")
	exportCmd.Flags().IntVar(&exportTo, "to", 0, "último ano (padrão: último ano dos dados)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "arquivo zip de saída")
}

// exportZip writes the package of the already filtered dataset d into
// zipName and returns how many files it holds.
func exportZip(d loader.Dataset, rates []dataset.InterestRateObservation, rng dataset.YearRange, zipName string) (int, error) {
	tmp, err := os.MkdirTemp("", "economia-export-*")
	if err != nil {
		return 0, fmt.Errorf("error creating export folder: %w", err)
	}
	// Removendo o resquício dos arquivos intermediários
	defer os.RemoveAll(tmp)

	var files []string

	joinPath := filepath.Join(tmp, joinFile)
	rows := store.Join(d.Sector(dataset.Construction), d.Sector(dataset.RealEstate))
	if err := toCSVFile(&rows, store.JoinHeader(), joinPath); err != nil {
		return 0, fmt.Errorf("error dumping joined tables: %w", err)
	}
	files = append(files, joinPath)

	var resumos []Resumo
	for _, s := range dataset.Sectors {
		if r, ok := resumir(s, d.Sector(s)); ok {
			resumos = append(resumos, r)
		}
	}
	resumoPath := filepath.Join(tmp, resumoFile)
	if err := toCSVFile(&resumos, resumoHeader, resumoPath); err != nil {
		return 0, fmt.Errorf("error dumping summary: %w", err)
	}
	files = append(files, resumoPath)

	if d.FGTS != nil {
		fgtsPath := filepath.Join(tmp, store.FGTSFile)
		if err := writeFGTS(d.FGTS, fgtsPath); err != nil {
			return 0, err
		}
		files = append(files, fgtsPath)
	}

	if err := os.Mkdir(filepath.Join(tmp, chartsDir), 0o755); err != nil {
		return 0, fmt.Errorf("error creating charts folder: %w", err)
	}
	in := chart.Input{
		Tables:  d.Sectors,
		FGTS:    d.FGTS,
		Rates:   dataset.FilterDates(rates, rng),
		Sectors: dataset.Sectors,
	}
	for _, v := range chart.Views {
		for i, fig := range chart.Build(v, in).Figures {
			path := filepath.Join(tmp, chartsDir, fmt.Sprintf("%s-%d.html", v, i+1))
			chart.WriteFile(fig, path)
			files = append(files, path)
		}
	}

	if err := zipFiles(zipName, tmp, files); err != nil {
		return 0, fmt.Errorf("error zipping export (%s): %w", zipName, err)
	}
	return len(files), nil
}

func writeFGTS(rows []dataset.FGTSContribution, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file(%s):%q", path, err)
	}
	defer f.Close()
	if err := store.EncodeFGTS(f, rows); err != nil {
		return fmt.Errorf("error dumping FGTS table: %w", err)
	}
	return f.Close()
}
