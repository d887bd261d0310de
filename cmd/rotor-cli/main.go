// Rotor CLI — инструмент командной строки для управления панелями,
// расписаниями ротации, привязками и шаблонами уведомлений.
//
// Использование:
//
//	rotor [--db-url DSN] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	panel      Управление панелями
//	schedule   Управление расписаниями ротации
//	binding    Привязка аккаунтов к чатам доставки
//	selection  Шаблоны уведомлений и выборка ссылок
//	usage      Просмотр и сброс трафика аккаунта
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	_ = godotenv.Load()

	var dbURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "rotor",
		Short:         "Rotor CLI — subscription rotation scheduler tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL DSN (default: $DB_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	storesFn := func(cmd *cobra.Command) (*cli.Stores, error) {
		return cli.OpenStores(cmd.Context(), dbURL)
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewPanelCmd(storesFn, outputFn),
		cli.NewScheduleCmd(storesFn, outputFn),
		cli.NewBindingCmd(storesFn, outputFn),
		cli.NewSelectionCmd(storesFn, outputFn),
		cli.NewUsageCmd(storesFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
