package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/domain"
)

// NewBindingCmd создаёт группу команд для привязок аккаунтов к чатам.
func NewBindingCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binding",
		Short: "Manage account-to-chat bindings",
	}

	cmd.AddCommand(
		newBindingShowCmd(storesFn, outputFn),
		newBindingSetCmd(storesFn, outputFn),
		newBindingDeleteCmd(storesFn, outputFn),
	)

	return cmd
}

func newBindingShowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show PANEL_ID USERNAME",
		Short: "Show the delivery chat bound to an account",
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

			b, err := stores.Bindings.Get(cmd.Context(), key)
			if err != nil {
				return err
			}

			out.KV([][2]string{
				{"Panel", strconv.FormatInt(b.PanelID, 10)},
				{"Username", b.Username},
				{"Chat", strconv.FormatInt(b.ChatID, 10)},
			}, b)
			return nil
		},
	}
}

func newBindingSetCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "set PANEL_ID USERNAME CHAT_ID",
		Short: "Bind an account to a delivery chat",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseAccountKey(args)
			if err != nil {
				return err
			}
			chatID, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[2])
			}

			stores, err := storesFn(cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			out := outputFn()

			b := &domain.Binding{PanelID: key.PanelID, Username: key.Username, ChatID: chatID}
			if err := stores.Bindings.Set(cmd.Context(), b); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Account %s bound to chat %d", key.String(), chatID))
			return nil
		},
	}
}

func newBindingDeleteCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PANEL_ID USERNAME",
		Short: "Remove the binding; delivery falls back to the panel default chat",
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

			if err := stores.Bindings.Delete(cmd.Context(), key); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Binding removed for %s", key.String()))
			return nil
		},
	}
}
