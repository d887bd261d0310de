package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/domain"
	"github.com/shaiso/Rotor/internal/scheduler"
)

// StoresFn лениво открывает Stores; закрытие — обязанность команды.
type StoresFn func(cmd *cobra.Command) (*Stores, error)

// OutputFn создаёт Output после парсинга флагов.
type OutputFn func() *Output

// parseAccountKey разбирает позиционные аргументы PANEL_ID USERNAME.
func parseAccountKey(args []string) (domain.AccountKey, error) {
	panelID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return domain.AccountKey{}, fmt.Errorf("invalid panel id %q", args[0])
	}
	if args[1] == "" {
		return domain.AccountKey{}, fmt.Errorf("empty username")
	}
	return domain.AccountKey{PanelID: panelID, Username: args[1]}, nil
}

// NewScheduleCmd создаёт группу команд для управления расписаниями.
func NewScheduleCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage rotation schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(storesFn, outputFn),
		newScheduleCreateCmd(storesFn, outputFn),
		newScheduleShowCmd(storesFn, outputFn),
		newScheduleUpdateCmd(storesFn, outputFn),
		newScheduleEnableCmd(storesFn, outputFn, true),
		newScheduleEnableCmd(storesFn, outputFn, false),
		newScheduleDeleteCmd(storesFn, outputFn),
		newScheduleRunNowCmd(storesFn, outputFn),
	)

	return cmd
}

func newScheduleListCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			schedules, err := stores.Schedules.List(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"PANEL", "USERNAME", "INTERVAL", "CRON", "ENABLED", "NEXT_DUE", "LAST_ERROR"}
			rows := make([][]string, len(schedules))
			for i, s := range schedules {
				rows[i] = []string{
					strconv.FormatInt(s.PanelID, 10),
					s.Username,
					FormatIntervalMinutes(s.IntervalMinutes),
					s.CronExpr,
					strconv.FormatBool(s.Enabled),
					formatTime(s.NextDueAt),
					s.LastError,
				}
			}

			out.Print(headers, rows, schedules)
			return nil
		},
	}
}

func newScheduleCreateCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	var interval string
	var cronExpr string
	var timezone string

	cmd := &cobra.Command{
		Use:   "create PANEL_ID USERNAME",
		Short: "Create a rotation schedule for an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}

			if (interval == "") == (cronExpr == "") {
				return fmt.Errorf("exactly one of --interval or --cron is required")
			}

			s := &domain.Schedule{
				ID:       uuid.New(),
				PanelID:  key.PanelID,
				Username: key.Username,
				Timezone: timezone,
				Enabled:  true,
			}
			if interval != "" {
				minutes, err := ParseIntervalMinutes(interval)
				if err != nil {
					return err
				}
				s.IntervalMinutes = minutes
			} else {
				if err := scheduler.ValidateCronExpr(cronExpr); err != nil {
					return err
				}
				s.CronExpr = cronExpr
			}

			// Первая ротация — на ближайшем тике планировщика.
			now := time.Now().UTC()
			s.NextDueAt = &now
			s.CreatedAt = now
			s.UpdatedAt = now

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			if err := stores.Schedules.Create(cmd.Context(), s); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule created for %s", key.String()))
			printSchedule(out, s)
			return nil
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "Rotation interval in hours (H, H:MM or H.MM)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (e.g. '0 3 * * *')")
	cmd.Flags().StringVar(&timezone, "timezone", "Asia/Tehran", "Timezone for cron evaluation")

	return cmd
}

func newScheduleShowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show PANEL_ID USERNAME",
		Short: "Show schedule details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			s, err := stores.Schedules.GetByKey(cmd.Context(), key)
			if err != nil {
				return err
			}

			printSchedule(out, s)
			return nil
		},
	}
}

func newScheduleUpdateCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	var interval string
	var cronExpr string
	var timezone string

	cmd := &cobra.Command{
		Use:   "update PANEL_ID USERNAME",
		Short: "Update schedule interval, cron or timezone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}
			if interval != "" && cronExpr != "" {
				return fmt.Errorf("--interval and --cron are mutually exclusive")
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			s, err := stores.Schedules.GetByKey(cmd.Context(), key)
			if err != nil {
				return err
			}

			if interval != "" {
				minutes, err := ParseIntervalMinutes(interval)
				if err != nil {
					return err
				}
				s.IntervalMinutes = minutes
				s.CronExpr = ""
			}
			if cronExpr != "" {
				if err := scheduler.ValidateCronExpr(cronExpr); err != nil {
					return err
				}
				s.CronExpr = cronExpr
				s.IntervalMinutes = 0
			}
			if timezone != "" {
				s.Timezone = timezone
			}

			if err := stores.Schedules.Update(cmd.Context(), s); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule updated for %s", key.String()))
			printSchedule(out, s)
			return nil
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "Rotation interval in hours (H, H:MM or H.MM)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone for cron evaluation")

	return cmd
}

func newScheduleEnableCmd(storesFn StoresFn, outputFn OutputFn, enable bool) *cobra.Command {
	use, short := "enable", "Enable a schedule"
	if !enable {
		use, short = "disable", "Disable a schedule"
	}

	return &cobra.Command{
		Use:   use + " PANEL_ID USERNAME",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			if err := stores.Schedules.SetEnabled(cmd.Context(), key, enable); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule %sd for %s", use, key.String()))
			return nil
		},
	}
}

func newScheduleDeleteCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PANEL_ID USERNAME",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			if err := stores.Schedules.Delete(cmd.Context(), key); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule deleted for %s", key.String()))
			return nil
		},
	}
}

func newScheduleRunNowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "run-now PANEL_ID USERNAME",
		Short: "Move the next rotation to the upcoming scheduler tick",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			s, err := stores.Schedules.GetByKey(cmd.Context(), key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			s.NextDueAt = &now
			if err := stores.Schedules.Update(cmd.Context(), s); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Rotation for %s queued for the next tick", key.String()))
			return nil
		},
	}
}

func printSchedule(out *Output, s *domain.Schedule) {
	out.KV([][2]string{
		{"Panel", strconv.FormatInt(s.PanelID, 10)},
		{"Username", s.Username},
		{"Interval", FormatIntervalMinutes(s.IntervalMinutes)},
		{"Cron", s.CronExpr},
		{"Timezone", s.Timezone},
		{"Enabled", strconv.FormatBool(s.Enabled)},
		{"Next due", formatTime(s.NextDueAt)},
		{"Last run", formatTime(s.LastRunAt)},
		{"Last error", s.LastError},
	}, s)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
