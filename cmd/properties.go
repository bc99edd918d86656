package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hostexport/internal/config"
	"hostexport/internal/hospitable"
	"hostexport/internal/logger"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List the properties visible to the access token",
	Long: `List the Hospitable properties the token can read, with the id and
name used by PROPERTY_ID and PROPERTY_NAME.`,
	Example: `  hostexport properties
  hostexport properties --json`,
	Args: cobra.NoArgs,
	RunE: runProperties,
}

func init() {
	rootCmd.AddCommand(propertiesCmd)

	propertiesCmd.Flags().String("token", "", "Hospitable personal access token (PAT)")
	propertiesCmd.Flags().Bool("json", false, "Output as JSON format")
}

func runProperties(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent(baseLog, "properties")

	if cmd.Flags().Changed("token") {
		cfg.Token, _ = cmd.Flags().GetString("token")
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if cfg.Token == "" {
		log.Error().Str("field", "PAT").Msg("Credential token is missing")
		return errors.New("a Hospitable token is required (PAT or --token)")
	}

	client, err := propertiesClient(cfg, baseLog)
	if err != nil {
		log.Error().Err(err).Str("field", "HTTP_TIMEOUT").Str("value", cfg.HTTPTimeout).Msg("HTTP timeout must be a positive duration")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	properties, err := client.ListProperties(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list properties")
		return err
	}

	if jsonOutput {
		jsonData, err := json.MarshalIndent(properties, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal properties: %w", err)
		}
		fmt.Println(string(jsonData))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPUBLIC NAME")
	for _, p := range properties {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.PublicName)
	}
	return w.Flush()
}

func propertiesClient(c *config.Config, log zerolog.Logger) (*hospitable.Client, error) {
	timeout, err := config.ParseTimeout(c.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", c.HTTPTimeout, err)
	}

	return hospitable.NewClient(hospitable.ClientConfig{
		BaseURL: c.APIURL,
		Token:   c.Token,
		Timeout: timeout,
		Logger:  logger.WithComponent(log, "hospitable"),
	}), nil
}
