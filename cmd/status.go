package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadiminshakov/seedfarm/internal/domain"
	"github.com/vadiminshakov/seedfarm/internal/viewmodel"
	"github.com/vadiminshakov/seedfarm/pkg/logger"
)

var statusTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the farm once and print it",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 30*time.Second, "give up reading after this long")
}

var (
	statusTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FD1AE"))
	statusLabel = lipgloss.NewStyle().Bold(true).Width(14)
	statusDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	d, _, l, err := bootstrap(ctx, logger.New)
	if err != nil {
		return err
	}
	defer l.Sync()
	defer d.Close()

	d.Refresh(ctx)
	fmt.Println(renderStatus(d.Model.View()))
	return nil
}

func renderStatus(v viewmodel.View) string {
	var b strings.Builder

	account := statusDim.Render("not connected")
	if v.Connected {
		account = v.ShortAccount
	}
	b.WriteString(statusTitle.Render("Seed Farm") + "  " + account + "\n")

	apr := v.APR
	if apr != "-" {
		apr += " %"
	}
	actions := make([]string, 0, len(v.Actions))
	for _, a := range v.Actions {
		actions = append(actions, a.String())
	}

	for _, row := range [][2]string{
		{"Price", "1 " + domain.RewardUnit + " = " + v.Price + " " + domain.QuoteUnit},
		{"APR", apr},
		{"Balance", v.Balance + " " + domain.LPUnit},
		{"Stake", v.Stake + " " + domain.LPUnit},
		{"Reward", v.Reward + " " + domain.RewardUnit},
		{"Actions", strings.Join(actions, ", ")},
	} {
		b.WriteString(statusLabel.Render(row[0]) + row[1] + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
