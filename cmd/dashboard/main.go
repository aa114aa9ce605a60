// Package main - точка входа для дашборда набора в музыкальные программы.
//
// Подкоманды:
//   - serve    - HTTP API и статический интерфейс
//   - generate - сборка dashboard_data.json из xlsx-выгрузок
//   - classify - список студентов программы в терминале
//   - report   - отчёт по динамике набора и кандидатам
//
// Конфигурация берётся из окружения, .env и необязательного YAML-файла
// (--config). Переменные окружения имеют приоритет.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	dataSource string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Arts recruitment dashboard",
		Long:          "Classifies band, choir, dance and theatre rosters and serves them to the recruitment dashboard.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (env vars take precedence)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format override (json, console)")
	rootCmd.PersistentFlags().StringVar(&opts.dataSource, "data", "", "dataset file or URL (overrides DATA_SOURCE)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newClassifyCmd(opts),
		newReportCmd(opts),
	)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
