package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rotor/internal/panel"
	"github.com/shaiso/Rotor/internal/render"
)

// clientForPanel собирает клиент панели из сохранённой записи.
func clientForPanel(cmd *cobra.Command, stores *Stores, panelID int64) (*panel.Client, error) {
	p, err := stores.Panels.GetByID(cmd.Context(), panelID)
	if err != nil {
		return nil, err
	}
	return panel.NewClient(panel.Config{
		BaseURL:            p.BaseURL,
		Username:           p.AdminUsername,
		Password:           p.AdminPassword,
		InsecureSkipVerify: !p.VerifySSL,
	})
}

// NewUsageCmd создаёт группу команд для работы с трафиком аккаунта.
func NewUsageCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect and reset account traffic",
	}

	cmd.AddCommand(
		newUsageShowCmd(storesFn, outputFn),
		newUsageResetCmd(storesFn, outputFn),
	)

	return cmd
}

func newUsageShowCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show PANEL_ID USERNAME",
		Short: "Show account traffic with per-node breakdown",
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

			client, err := clientForPanel(cmd, stores, key.PanelID)
			if err != nil {
				return err
			}

			user, err := client.GetUser(cmd.Context(), key.Username)
			if err != nil {
				return err
			}
			usage, err := client.GetUserUsage(cmd.Context(), key.Username)
			if err != nil {
				return err
			}

			pairs := [][2]string{
				{"Username", user.Username},
				{"Status", user.Status},
				{"Used", render.FormatBytes(user.UsedTraffic)},
				{"Limit", render.FormatBytesOpt(user.DataLimit)},
				{"Remaining", render.FormatBytesOpt(user.RemainingTraffic())},
				{"Links", strconv.Itoa(len(user.Links))},
			}
			for _, n := range usage.Usages {
				if n.UsedTraffic <= 0 {
					continue
				}
				pairs = append(pairs, [2]string{"Node " + n.NodeName, render.FormatBytes(n.UsedTraffic)})
			}

			out.KV(pairs, struct {
				User  *panel.User  `json:"user"`
				Usage *panel.Usage `json:"usage"`
			}{user, usage})
			return nil
		},
	}
}

func newUsageResetCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "reset PANEL_ID USERNAME",
		Short: "Reset the account traffic counter on the panel",
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

			client, err := clientForPanel(cmd, stores, key.PanelID)
			if err != nil {
				return err
			}

			user, err := client.ResetUsage(cmd.Context(), key.Username)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Traffic reset for %s (now %s)",
				key.String(), render.FormatBytes(user.UsedTraffic)))
			return nil
		},
	}
}

// newPanelInboundsCmd показывает инбаунды панели по протоколам.
func newPanelInboundsCmd(storesFn StoresFn, outputFn OutputFn) *cobra.Command {
	return &cobra.Command{
		Use:   "inbounds ID",
		Short: "List panel inbounds grouped by protocol",
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

			client, err := clientForPanel(cmd, stores, id)
			if err != nil {
				return err
			}

			inbounds, err := client.GetInbounds(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"PROTOCOL", "INBOUND"}
			var rows [][]string
			for proto, tags := range inbounds {
				for _, tag := range tags {
					rows = append(rows, []string{proto, tag})
				}
			}

			out.Print(headers, rows, inbounds)
			return nil
		},
	}
}
