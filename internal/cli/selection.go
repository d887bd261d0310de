package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/domain"
	"github.com/shaiso/Rotor/internal/repo"
)

// NewSelectionCmd создаёт группу команд для настроек уведомления.
func NewSelectionCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Manage notification templates and link selection",
	}

	cmd.AddCommand(
		newSelectionShowCmd(storesFn, outputFn),
		newSelectionSetTemplateCmd(storesFn, outputFn),
		newSelectionSetButtonsCmd(storesFn, outputFn),
		newSelectionSetKeysCmd(storesFn, outputFn),
		newSelectionClearCmd(storesFn, outputFn),
	)

	return cmd
}

// loadOrEmptySelection возвращает сохранённую выборку или пустую
// заготовку, когда записи ещё нет.
func loadOrEmptySelection(cmd *cobra.Command, stores *Stores, key domain.AccountKey) (*domain.Selection, error) {
	sel, err := stores.Selections.Get(cmd.Context(), key)
	if errors.Is(err, repo.ErrNotFound) {
		return &domain.Selection{PanelID: key.PanelID, Username: key.Username}, nil
	}
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func newSelectionShowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show PANEL_ID USERNAME",
		Short: "Show notification settings for an account",
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

			sel, err := loadOrEmptySelection(cmd, stores, key)
			if err != nil {
				return err
			}

			template := sel.MessageTemplate
			if template == "" {
				template = "(default)"
			}
			out.KV([][2]string{
				{"Panel", strconv.FormatInt(sel.PanelID, 10)},
				{"Username", sel.Username},
				{"Template", template},
				{"Link keys", strings.Join(sel.SelectedLinkKeys, ", ")},
				{"Buttons", strings.Join(sel.ButtonTemplates, " | ")},
			}, sel)
			return nil
		},
	}
}

func newSelectionSetTemplateCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "set-template PANEL_ID USERNAME TEMPLATE",
		Short: "Set the notification message template",
		Long: `Set the notification message template for an account.

The template may use {{placeholders}}: username, panel_name, inbound_name,
date_jalali, date_gregorian, traffic_used_human, traffic_limit_human,
traffic_remaining_human, next_reset_at, next_reset_at_jalali,
configs, configs_count, links, links_count.

An empty TEMPLATE restores the default.`,
		Args: cobra.ExactArgs(3),
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

			sel, err := loadOrEmptySelection(cmd, stores, key)
			if err != nil {
				return err
			}

			sel.MessageTemplate = args[2]
			if err := stores.Selections.Set(cmd.Context(), sel); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Template updated for %s", key.String()))
			return nil
		},
	}
}

func newSelectionSetButtonsCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "set-buttons PANEL_ID USERNAME [TEMPLATE]...",
		Short: "Set inline button templates (up to 3)",
		Args:  cobra.RangeArgs(2, 2+domain.MaxButtonTemplates),
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

			sel, err := loadOrEmptySelection(cmd, stores, key)
			if err != nil {
				return err
			}

			sel.ButtonTemplates = args[2:]
			if err := stores.Selections.Set(cmd.Context(), sel); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Buttons updated for %s", key.String()))
			return nil
		},
	}
}

func newSelectionSetKeysCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "set-keys PANEL_ID USERNAME [KEY]...",
		Short: "Restrict the notification to specific link keys",
		Long: `Restrict the notification to links with the given stable keys.

Keys are 12-character hex fingerprints; no keys means "all links".`,
		Args: cobra.MinimumNArgs(2),
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

			sel, err := loadOrEmptySelection(cmd, stores, key)
			if err != nil {
				return err
			}

			sel.SelectedLinkKeys = args[2:]
			if err := stores.Selections.Set(cmd.Context(), sel); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Link selection updated for %s (%d keys)", key.String(), len(sel.SelectedLinkKeys)))
			return nil
		},
	}
}

func newSelectionClearCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "clear PANEL_ID USERNAME",
		Short: "Reset templates, buttons and link selection to defaults",
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

			sel := &domain.Selection{PanelID: key.PanelID, Username: key.Username}
			if err := stores.Selections.Set(cmd.Context(), sel); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Notification settings reset for %s", key.String()))
			return nil
		},
	}
}
