package cmd

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/emitter"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

var pageFlags struct {
	tab         int
	url         string
	pageText    string
	doubleClick bool
}

var selectCmd = &cobra.Command{
	Use:   "select <text>",
	Short: "Report a selection to the daemon as a page would",
	Long: `Select builds the selection payload a page would send (context widening,
page category, interaction strength) and reports it for --tab.

A plain selection of 100 characters or more is ignored unless
--double-click marks it as a strong interaction.

Example:
  lexilens select precarious --tab 3 --url https://www.bbc.com/news/1 \
      --page-text "Talks stalled. The peace remains precarious. Both sides wait."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSelect,
}

var focusCmd = &cobra.Command{
	Use:   "focus <tab>",
	Short: "Mark a tab as the frontmost tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := domain.ParseTabID(args[0])
		if err != nil {
			return err
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return daemonClient(cfg, logger).FocusTab(cmd.Context(), tab)
	},
}

var commandCmd = &cobra.Command{
	Use:   "command <text>",
	Short: "Trigger an explicit analyze command for a tab",
	Long: `Command is the context-menu action: the text is analyzed as a strong
selection, and the daemon asks the host to open the display surface if
none is connected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return daemonClient(cfg, logger).TriggerCommand(cmd.Context(), protocol.ContextCommandTriggered{
			TabID:     domain.TabID(pageFlags.tab),
			Text:      strings.Join(args, " "),
			SourceURL: pageFlags.url,
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a display surface is connected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		client := daemonClient(cfg, logger)
		open, err := client.SurfaceOpen(cmd.Context())
		if err != nil {
			return err
		}
		if !open {
			printf(cmd, "display surface: closed\n")
			return nil
		}
		printf(cmd, "display surface: open\n")
		last, err := client.LastSelection(cmd.Context(), 0)
		if err != nil {
			return err
		}
		if last != nil {
			printf(cmd, "last selection: %s\n", last.Word)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{selectCmd, commandCmd} {
		c.Flags().IntVar(&pageFlags.tab, "tab", 1, "browser tab id")
		c.Flags().StringVar(&pageFlags.url, "url", "", "page URL")
	}
	selectCmd.Flags().StringVar(&pageFlags.pageText, "page-text", "", "surrounding page text used to widen the context")
	selectCmd.Flags().BoolVar(&pageFlags.doubleClick, "double-click", false, "report as a double-click selection")

	rootCmd.AddCommand(selectCmd, focusCmd, commandCmd, statusCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	tab, err := domain.ParseTabID(strconv.Itoa(pageFlags.tab))
	if err != nil {
		return err
	}

	sender := &lastErrSender{next: daemonClient(cfg, logger)}
	e := emitter.New(logger, sender, emitter.Options{
		TabID:         tab,
		Debounce:      cfg.Coordinator.DebounceWindow,
		WeakMaxLength: cfg.Coordinator.WeakMaxLength,
		ContextWindow: cfg.Coordinator.ContextWindow,
		SendTimeout:   5 * time.Second,
	})

	g := emitter.Gesture{
		Kind:     emitter.PointerUp,
		Text:     strings.Join(args, " "),
		PageText: pageFlags.pageText,
		URL:      pageFlags.url,
	}
	if pageFlags.doubleClick {
		g.Kind = emitter.DoubleClick
	}

	evt, ok := e.Build(g)
	if !ok {
		return errors.New("selection ignored: empty, or too long for a plain selection (use --double-click)")
	}

	e.Observe(g)
	e.Flush()
	if sender.err != nil {
		return sender.err
	}
	printf(cmd, "reported %q (%s, %s) for tab %s\n", evt.Word, evt.PageCategory, evt.Strength, tab)
	return nil
}

// lastErrSender keeps the error the emitter would otherwise only log.
type lastErrSender struct {
	next emitter.Sender
	err  error
}

func (s *lastErrSender) ReportSelection(ctx context.Context, msg protocol.SelectionReported) error {
	s.err = s.next.ReportSelection(ctx, msg)
	return s.err
}
