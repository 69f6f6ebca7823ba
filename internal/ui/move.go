package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
)

func (a *App) moveCmd() *cobra.Command {
	var (
		date   string
		hour   int
		minute int
	)

	cmd := &cobra.Command{
		Use:   "move <type> <id>",
		Short: "Move a record to a new start time",
		Long: `Move one record to a new start, keeping its duration.

The date accepts YYYY-MM-DD, "today", "tomorrow", a weekday name or
"next-<weekday>". Targets in the past are rejected. The change is written
back to the record's source; if that fails nothing is changed.`,
		Example: `  clashmap move personal p-17 --date=tomorrow --hour=14
  clashmap move company all-hands --date=2025-03-14 --hour=10 --minute=30`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := record.ParseSourceType(args[0])
			if err != nil {
				return err
			}
			key := record.Key{Source: src, ID: args[1]}

			if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
				return fmt.Errorf("%w: %02d:%02d", reschedule.ErrInvalidTarget, hour, minute)
			}

			b, err := a.buildBoard(cmd.Context())
			if err != nil {
				return err
			}
			loc := b.Window.Location

			day, err := dateutil.ParseRelativeDate(date, b.Now.In(loc))
			if err != nil {
				return err
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

			coord, err := a.coordinator(b)
			if err != nil {
				return err
			}
			before, ok := coord.Get(key)
			if !ok {
				return fmt.Errorf("%w: %s", reschedule.ErrRecordNotFound, key)
			}

			var moved record.ScheduleRecord
			if slot, ok := grid.SlotAt(b.Window, start); ok && minute == 0 {
				moved, err = coord.MoveToSlot(cmd.Context(), key, slot, b.Window)
			} else {
				moved, err = coord.MoveToStart(cmd.Context(), key, start)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moved %s: %s → %s\n", key,
				formatInterval(before.Interval, loc), formatInterval(moved.Interval, loc))

			res := conflict.Detect(b.Window.Scope(coord.Snapshot()), b.Window)
			if partners := res.Partners(key); len(partners) > 0 {
				fmt.Fprintln(out, formatConflict(fmt.Sprintf("⚠ still clashes with %s", pluralize(len(partners), "record"))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Target date (defaults to today)")
	cmd.Flags().IntVar(&hour, "hour", 0, "Target hour (0-23)")
	cmd.Flags().IntVar(&minute, "minute", 0, "Target minute (0-59)")
	_ = cmd.MarkFlagRequired("hour")

	return cmd
}
