package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/domain"
	"github.com/shaiso/Rotor/internal/panel"
)

// NewPanelCmd создаёт группу команд для управления панелями.
func NewPanelCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Manage panels",
	}

	cmd.AddCommand(
		newPanelListCmd(storesFn, outputFn),
		newPanelAddCmd(storesFn, outputFn),
		newPanelShowCmd(storesFn, outputFn),
		newPanelSetChatCmd(storesFn, outputFn),
		newPanelInboundsCmd(storesFn, outputFn),
	)

	return cmd
}

func newPanelListCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			panels, err := stores.Panels.List(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "BASE_URL", "DEFAULT_CHAT"}
			rows := make([][]string, len(panels))
			for i, p := range panels {
				rows[i] = []string{
					strconv.FormatInt(p.ID, 10),
					p.Name,
					p.BaseURL,
					formatChatID(p.DefaultChatID),
				}
			}

			out.Print(headers, rows, panels)
			return nil
		},
	}
}

func newPanelAddCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	var adminUser string
	var adminPassword string
	var defaultChat int64
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "add NAME BASE_URL",
		Short: "Register a panel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := panel.NormalizeBaseURL(args[1])
			if err != nil {
				return err
			}

			p := &domain.Panel{
				Name:          args[0],
				BaseURL:       baseURL,
				AdminUsername: adminUser,
				AdminPassword: adminPassword,
				VerifySSL:     !skipVerify,
			}
			if defaultChat != 0 {
				p.DefaultChatID = &defaultChat
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			if err := stores.Panels.Create(cmd.Context(), p); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Panel %q registered with id %d", p.Name, p.ID))
			printPanel(out, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&adminUser, "admin-user", "", "Panel admin username (required)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Panel admin password (required)")
	cmd.Flags().Int64Var(&defaultChat, "default-chat", 0, "Default delivery chat ID")
	cmd.Flags().BoolVar(&skipVerify, "insecure", false, "Skip TLS certificate verification")
	cmd.MarkFlagRequired("admin-user")
	cmd.MarkFlagRequired("admin-password")

	return cmd
}

func newPanelShowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show panel details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid panel id %q", args[0])
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			p, err := stores.Panels.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			printPanel(out, p)
			return nil
		},
	}
}

func newPanelSetChatCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "set-chat ID CHAT_ID",
		Short: "Set the default delivery chat (0 clears it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid panel id %q", args[0])
			}
			chatID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[1])
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			var chat *int64
			if chatID != 0 {
				chat = &chatID
			}
			if err := stores.Panels.SetDefaultChat(cmd.Context(), id, chat); err != nil {
				return err
			}

			if chat == nil {
				out.Success(fmt.Sprintf("Default chat cleared for panel %d", id))
			} else {
				out.Success(fmt.Sprintf("Default chat for panel %d set to %d", id, chatID))
			}
			return nil
		},
	}
}

func printPanel(out *Output, p *domain.Panel) {
	out.KV([][2]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Name", p.Name},
		{"Base URL", p.BaseURL},
		{"Admin", p.AdminUsername},
		{"Verify SSL", strconv.FormatBool(p.VerifySSL)},
		{"Default chat", formatChatID(p.DefaultChatID)},
	}, p)
}

func formatChatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
