package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/EcstasyEngineer/mantrad/internal/catalog"
	"github.com/EcstasyEngineer/mantrad/internal/config"
	"github.com/EcstasyEngineer/mantrad/internal/engine"
	"github.com/EcstasyEngineer/mantrad/internal/notify"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

var (
	enrollThemes     string
	enrollSubject    string
	enrollController string
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <user-id>",
	Short: "Enroll a user for mantra delivery",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnroll,
}

var unenrollCmd = &cobra.Command{
	Use:   "unenroll <user-id>",
	Short: "Stop mantra delivery for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnenroll,
}

func init() {
	enrollCmd.Flags().StringVar(&enrollThemes, "themes", "", "comma-separated theme names")
	enrollCmd.Flags().StringVar(&enrollSubject, "subject", "", "subject name for templates")
	enrollCmd.Flags().StringVar(&enrollController, "controller", "", "controller name for templates")
}

// openDeps opens the store and catalog from config. WAL mode and the busy
// timeout make it safe to do this while the daemon is running.
func openDeps() (*store.DB, *catalog.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return db, cat, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	db, cat, err := openDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	var themes []string
	if enrollThemes != "" {
		for _, t := range strings.Split(enrollThemes, ",") {
			themes = append(themes, strings.TrimSpace(t))
		}
	}

	eng := engine.New(db, cat, notify.LogNotifier{}, nil)
	u, err := eng.Enroll(args[0], themes, enrollSubject, enrollController, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "enrolled %s (themes: %s)\n", u.ID, strings.Join(u.Themes, ", "))
	if u.NextDeliveryAt != nil {
		fmt.Fprintf(os.Stderr, "first delivery: %s\n",
			time.UnixMilli(*u.NextDeliveryAt).Local().Format(time.RFC1123))
	}
	return nil
}

func runUnenroll(cmd *cobra.Command, args []string) error {
	db, cat, err := openDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, cat, notify.LogNotifier{}, nil)
	u, err := eng.Unenroll(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "unenrolled %s\n", u.ID)
	return nil
}
