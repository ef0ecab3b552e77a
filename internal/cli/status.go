package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <user-id>",
	Short: "Show a user's delivery state and encounter stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, _, err := openDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := db.GetUser(args[0])
	if err != nil {
		return err
	}
	stats, err := db.EncounterStats(args[0])
	if err != nil {
		return err
	}

	enrolled := color.New(color.FgRed).Sprint("not enrolled")
	if u.Enrolled {
		enrolled = color.New(color.FgGreen).Sprint("enrolled")
	}
	fmt.Printf("%s  %s\n", u.ID, enrolled)
	fmt.Printf("  mode:      %s\n", u.DeliveryMode)
	fmt.Printf("  themes:    %s\n", strings.Join(u.Themes, ", "))
	fmt.Printf("  frequency: %.2f/day\n", u.Frequency)

	if u.ConsecutiveFailures > 0 {
		fmt.Printf("  misses:    %s\n",
			color.New(color.FgYellow).Sprintf("%d consecutive", u.ConsecutiveFailures))
	}

	if u.SentAt != nil {
		fmt.Printf("  awaiting response since %s\n",
			time.UnixMilli(*u.SentAt).Local().Format(time.Kitchen))
		if u.NextDeliveryAt != nil {
			fmt.Printf("  deadline:  %s\n",
				time.UnixMilli(*u.NextDeliveryAt).Local().Format(time.RFC1123))
		}
	} else if u.NextDeliveryAt != nil {
		fmt.Printf("  next:      %s\n",
			time.UnixMilli(*u.NextDeliveryAt).Local().Format(time.RFC1123))
	}

	fmt.Printf("  encounters: %d total, %d completed, %d points\n",
		stats.Total, stats.Completed, stats.TotalPoints)

	recent, err := db.RecentEncounters(args[0], 5)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Println("  recent:")
		for _, e := range recent {
			mark := color.New(color.FgRed).Sprint("✗")
			if e.Completed {
				mark = color.New(color.FgGreen).Sprint("✓")
			}
			fmt.Printf("    %s %s  %q (%s, %dpt)\n", mark,
				time.UnixMilli(e.SentAt).Local().Format("Jan _2 15:04"),
				e.Mantra, e.Theme, e.TotalPoints())
		}
	}
	return nil
}
