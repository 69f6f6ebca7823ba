package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clashmap/internal/config"
	"github.com/javiermolinar/clashmap/internal/theme"
)

func (a *App) configCmd() *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the effective configuration.

If no config file exists, creates one with default values.
With --edit, prompts for each setting and saves the result.

Example:
  clashmap config --edit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd.InOrStdin(), cmd.OutOrStdout(), a.configPath, edit)
		},
	}

	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Edit the configuration interactively")
	return cmd
}

func runConfig(in io.Reader, out io.Writer, configPath string, edit bool) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)
	if !edit {
		return nil
	}

	reader := bufio.NewReader(in)
	p := prompter{r: reader, w: out}
	fmt.Fprintln(out)

	cfg.Window.Days = p.intValue("Window days", cfg.Window.Days)
	cfg.Window.HourStart = p.intValue("First visible hour", cfg.Window.HourStart)
	cfg.Window.HourEnd = p.intValue("Last visible hour (exclusive)", cfg.Window.HourEnd)
	cfg.Window.Timezone = p.value("Timezone (empty for local)", cfg.Window.Timezone)
	cfg.Reschedule.GapMinutes = p.intValue("Auto-adjust gap (minutes)", cfg.Reschedule.GapMinutes)
	cfg.Reschedule.TimeoutSeconds = p.intValue("Persistence timeout (seconds)", cfg.Reschedule.TimeoutSeconds)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Watch.Cron = p.value("Watch schedule", cfg.Watch.Cron)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	tz := cfg.Window.Timezone
	if tz == "" {
		tz = "(local)"
	}
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[window]")
	fmt.Fprintf(out, "  days                     = %d\n", cfg.Window.Days)
	fmt.Fprintf(out, "  hour_start               = %d\n", cfg.Window.HourStart)
	fmt.Fprintf(out, "  hour_end                 = %d\n", cfg.Window.HourEnd)
	fmt.Fprintf(out, "  timezone                 = %s\n", tz)
	fmt.Fprintf(out, "  min_render_hours         = %g\n", cfg.Window.MinRenderHours)
	fmt.Fprintln(out, "\n[reschedule]")
	fmt.Fprintf(out, "  strategy                 = %s\n", cfg.Reschedule.Strategy)
	fmt.Fprintf(out, "  gap_minutes              = %d\n", cfg.Reschedule.GapMinutes)
	fmt.Fprintf(out, "  default_duration_minutes = %d\n", cfg.Reschedule.DefaultDurationMinutes)
	fmt.Fprintf(out, "  timeout_seconds          = %d\n", cfg.Reschedule.TimeoutSeconds)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path                  = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  env                      = %s\n", cfg.Log.Env)
	fmt.Fprintf(out, "  level                    = %s\n", cfg.Log.Level)
	fmt.Fprintln(out, "\n[watch]")
	fmt.Fprintf(out, "  cron                     = %s\n", cfg.Watch.Cron)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme                    = %s\n", cfg.UI.Theme)
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	input, _ := p.r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) intValue(label string, current int) int {
	for {
		value := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(p.w, "  Invalid number %q\n", value)
		if _, err := p.r.Peek(1); err != nil {
			return current
		}
	}
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(p.w, "  Invalid theme %q. Available: %s\n", value, options)
		if _, err := p.r.Peek(1); err != nil {
			return current
		}
	}
}
