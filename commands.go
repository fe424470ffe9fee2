package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/refresh"
	"github.com/Duddu64/economia/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe o painel HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(a.loader, a.refresher, a.client,
			server.WithRateSeries(cfg.BCB.Series, cfg.History),
			server.WithLogger(logger))
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

var refreshEvery time.Duration

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Busca os dados do IBGE e grava as tabelas atualizadas",
	Long: `Busca a tabela de agregados do IBGE, recalcula as duas tabelas setoriais
do ano inicial até o ano corrente e substitui a variante atualizada. Em caso
de falha os arquivos ficam como estavam.

Com --every o comando continua rodando e repete a atualização no intervalo
dado. Cada execução imprime um resultado em JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		out := json.NewEncoder(cmd.OutOrStdout())
		cmdline := strings.Join(os.Args, " ")

		every := refreshEvery
		if every == 0 {
			every = cfg.Every()
		}
		if every > 0 {
			return a.refresher.Schedule(cmd.Context(), every, func(res refresh.Result, err error) {
				if err := out.Encode(newExecutionResult(cmdline, res, err)); err != nil {
					logger.Error("error writing refresh result", zap.Error(err))
				}
			})
		}

		res, err := a.refresher.Run(cmd.Context())
		if encErr := out.Encode(newExecutionResult(cmdline, res, err)); encErr != nil {
			return fmt.Errorf("error writing refresh result: %w", encErr)
		}
		return err
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove as tabelas atualizadas e volta para as originais",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		if err := a.refresher.Reset(); err != nil {
			return fmt.Errorf("error removing updated tables: %w", err)
		}
		logger.Info("updated tables removed", zap.String("data_dir", a.store.Dir()))
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "endereço do servidor (sobrepõe a configuração)")
	refreshCmd.Flags().DurationVar(&refreshEvery, "every", 0, "repete a atualização neste intervalo (ex.: 24h)")
}
