package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/EcstasyEngineer/mantrad/internal/config"
)

var respondPublic bool

var respondCmd = &cobra.Command{
	Use:   "respond <user-id> <text...>",
	Short: "Submit a response to the running daemon",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRespond,
}

func init() {
	respondCmd.Flags().BoolVar(&respondPublic, "public", false, "count the response as public")
}

const httpTimeout = 5 * time.Second

// daemonURL returns the base URL of the running daemon. Respects the
// MANTRAD_URL env var, falls back to the configured listen address.
func daemonURL() string {
	if url := os.Getenv("MANTRAD_URL"); url != "" {
		return url
	}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	return "http://" + cfg.Addr()
}

func runRespond(cmd *cobra.Command, args []string) error {
	userID := args[0]
	text := strings.Join(args[1:], " ")

	body, err := json.Marshal(map[string]any{
		"text":      text,
		"is_public": respondPublic,
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: httpTimeout}
	url := daemonURL() + "/api/users/" + userID + "/response"
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w (is the daemon running?)", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		json.Unmarshal(data, &e)
		if e.Error != "" {
			return fmt.Errorf("daemon: %s", e.Error)
		}
		return fmt.Errorf("daemon: status %d: %s", resp.StatusCode, data)
	}

	var out struct {
		Matched     bool `json:"matched"`
		BasePoints  int  `json:"base_points"`
		SpeedBonus  int  `json:"speed_bonus"`
		PublicBonus int  `json:"public_bonus"`
		TotalPoints int  `json:"total_points"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if !out.Matched {
		fmt.Println(color.New(color.FgRed).Sprint("no match"))
		return nil
	}
	fmt.Printf("%s  %d points (%d base",
		color.New(color.FgGreen).Sprint("matched"), out.TotalPoints, out.BasePoints)
	if out.SpeedBonus > 0 {
		fmt.Printf(" + %d speed", out.SpeedBonus)
	}
	if out.PublicBonus > 0 {
		fmt.Printf(" + %d public", out.PublicBonus)
	}
	fmt.Println(")")
	return nil
}
