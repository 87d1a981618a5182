package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/medbook/medbook/internal/domain/scheduling"
)

var errSlotRejected = errors.New("slot rejected")

const nowLayout = "2006-01-02 15:04"

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a date and time against the booking rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			tm, _ := cmd.Flags().GetString("time")
			nowStr, _ := cmd.Flags().GetString("now")
			tz, _ := cmd.Flags().GetString("tz")

			loc := time.Local
			if tz != "" {
				var err error
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("--tz: %w", err)
				}
			}
			var now time.Time
			if nowStr != "" {
				var err error
				if now, err = time.ParseInLocation(nowLayout, nowStr, loc); err != nil {
					return fmt.Errorf("--now must look like %q: %w", nowLayout, err)
				}
			}
			return runCheck(cmd.OutOrStdout(), scheduling.NewEngine(loc), date, tm, now)
		},
	}
	cmd.Flags().String("date", "", "Appointment date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "Appointment time (HH:mm)")
	cmd.Flags().String("now", "", "Reference time as \"YYYY-MM-DD HH:mm\" (default: current time)")
	cmd.Flags().String("tz", "", "IANA time zone of the clinic (default: local)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

// runCheck prints "ok" or one line per violation and returns errSlotRejected
// when any rule fails.
func runCheck(w io.Writer, engine *scheduling.Engine, date, tm string, now time.Time) error {
	vs := engine.ValidateAll(date, tm, now)
	if len(vs) == 0 {
		fmt.Fprintln(w, "ok")
		return nil
	}
	for _, v := range vs {
		fmt.Fprintf(w, "%-26s %-5s %s\n", v.Kind, v.Field, scheduling.Message(v))
	}
	return errSlotRejected
}
