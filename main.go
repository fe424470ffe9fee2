package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dadosjusbr/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Duddu64/economia/internal/config"
	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/fetch"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/normalize"
	"github.com/Duddu64/economia/internal/refresh"
	"github.com/Duddu64/economia/internal/store"
)

var (
	cfgPath string
	dataDir string
	verbose bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "economia",
	Short: "Emprego na construção civil e nas atividades imobiliárias",
	Long: `Painel do mercado de trabalho da construção civil e das atividades
imobiliárias, com dados da PNAD Contínua (IBGE), do CAGED, do FGTS e da taxa
de juros do financiamento imobiliário (Banco Central).

As tabelas originais ficam na pasta de dados; "refresh" grava a variante
atualizada ao lado delas e "reset" volta para as originais.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		logger.Debug("config loaded", zap.String("data_dir", cfg.DataDir), zap.String("config", cfgPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "economia.yaml", "arquivo de configuração (YAML)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "pasta das tabelas CSV (sobrepõe a configuração)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log em nível debug")

	rootCmd.AddCommand(serveCmd, refreshCmd, resetCmd, exportCmd, summaryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		status.ExitFromError(status.NewError(status.SystemError, err))
	}
}

// app wires the components every command works with.
type app struct {
	client    *fetch.Client
	store     *store.Store
	loader    *loader.Loader
	refresher *refresh.Refresher
}

func newApp() *app {
	client := fetch.New(append(cfg.ClientOptions(), fetch.WithLogger(logger))...)
	st := store.New(cfg.DataDir, logger)
	l := loader.New(st, logger)
	n := normalize.New(cfg.IBGE.OccupiedVariable, cfg.IBGE.Epoch)
	return &app{
		client:    client,
		store:     st,
		loader:    l,
		refresher: refresh.New(client, cfg.Aggregates(), n, l, logger),
	}
}

func (a *app) close() {
	a.client.Close()
}

// yearRange resolves the --from/--to flags against the range of d. Zero
// means the first or last year of the data.
func yearRange(d loader.Dataset, from, to int) (dataset.YearRange, error) {
	r, _ := d.Range()
	if from != 0 {
		r.Start = from
	}
	if to != 0 {
		r.End = to
	}
	if !r.Valid() {
		return r, fmt.Errorf("invalid year range %s", r)
	}
	return r, nil
}

// zipFiles packs files into filename. Files under a subfolder of basePath
// keep their relative path inside the archive.
func zipFiles(filename string, basePath string, files []string) error {
	newfile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer newfile.Close()
	zipWriter := zip.NewWriter(newfile)
	for _, file := range files {
		if err := addToZip(zipWriter, basePath, file); err != nil {
			zipWriter.Close()
			return fmt.Errorf("error adding %s to %s: %w", file, filename, err)
		}
	}
	return zipWriter.Close()
}

func addToZip(zipWriter *zip.Writer, basePath, file string) error {
	zipfile, err := os.Open(file)
	if err != nil {
		return err
	}
	defer zipfile.Close()
	info, err := zipfile.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	// Deflate is the compression method.
	header.Method = zip.Deflate
	t := strings.TrimPrefix(strings.TrimPrefix(file, basePath), string(filepath.Separator))
	if filepath.Dir(t) != "." {
		header.Name = filepath.ToSlash(t)
	}
	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, zipfile)
	return err
}
