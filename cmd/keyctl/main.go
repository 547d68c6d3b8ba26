package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edvin/keyhub/internal/cli"
	"github.com/edvin/keyhub/internal/model"
)

var (
	loginURL     string
	loginToken   string
	loginName    string
	keyName      string
	keyType      string
	monthlyLimit int
	showFull     bool
)

var rootCmd = &cobra.Command{
	Use:           "keyctl",
	Short:         "Manage keyhub API keys from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an API endpoint and session token as a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := cli.SaveProfile(loginName, loginURL, loginToken)
		if err != nil {
			return err
		}
		if err := cli.SetActive(profile.Name); err != nil {
			return err
		}
		fmt.Printf("Logged in. Active profile: %q (%s)\n", profile.Name, profile.BaseURL)
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := cli.ListProfiles()
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles found. Run: keyctl login --url <api-url> --token <token>")
			return nil
		}

		active, _ := cli.GetActive()
		fmt.Printf("%-20s %-40s %s\n", "NAME", "URL", "ACTIVE")
		for _, p := range profiles {
			marker := ""
			if p.Name == active {
				marker = "*"
			}
			fmt.Printf("%-20s %-40s %s\n", p.Name, p.BaseURL, marker)
		}
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Switch the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.SetActive(args[0]); err != nil {
			return err
		}
		fmt.Printf("Active profile set to %q\n", args[0])
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		keys, err := client.ListKeys(cmd.Context())
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Println("No API keys. Create one with: keyctl keys create --name <name> --type dev")
			return nil
		}

		fmt.Printf("%-38s %-20s %-6s %-36s %8s %8s\n", "ID", "NAME", "TYPE", "KEY", "USAGE", "LIMIT")
		for _, k := range keys {
			display := model.MaskKey(k.Key)
			if showFull {
				display = k.Key
			}
			limit := "-"
			if k.MonthlyLimit != nil {
				limit = fmt.Sprintf("%d", *k.MonthlyLimit)
			}
			fmt.Printf("%-38s %-20s %-6s %-36s %8d %8s\n", k.ID, k.Name, k.Type, display, k.Usage, limit)
		}
		return nil
	},
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		key, err := client.CreateKey(cmd.Context(), keyParams())
		if err != nil {
			return err
		}

		fmt.Printf("Created key %q (%s)\n", key.Name, key.ID)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Save this key now; it is shown in full only here:")
		fmt.Fprintf(os.Stderr, "  %s\n", key.Key)
		return nil
	},
}

var keysUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a key's name, type, or monthly limit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		key, err := client.UpdateKey(cmd.Context(), args[0], keyParams())
		if err != nil {
			return err
		}
		fmt.Printf("Updated key %q (%s)\n", key.Name, key.ID)
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		if err := client.DeleteKey(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted key %s\n", args[0])
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <key>",
	Short: "Check whether an API key is valid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		result, err := client.ValidateKey(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !result.Valid {
			fmt.Println("invalid")
			os.Exit(1)
		}
		fmt.Printf("valid: %s (%s, %s)\n", result.KeyInfo.Name, result.KeyInfo.Type, result.KeyInfo.ID)
		return nil
	},
}

var summarizeKey string

var summarizeCmd = &cobra.Command{
	Use:   "summarize <github-url>",
	Short: "Summarize a GitHub repository's README",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := activeClient()
		if err != nil {
			return err
		}
		summary, err := client.Summarize(cmd.Context(), summarizeKey, args[0])
		if err != nil {
			return err
		}

		fmt.Println(summary.Summary)
		if len(summary.CoolFacts) > 0 {
			fmt.Println()
			for _, fact := range summary.CoolFacts {
				fmt.Printf("  - %s\n", fact)
			}
		}
		return nil
	},
}

func keyParams() cli.KeyParams {
	params := cli.KeyParams{Name: keyName, Type: keyType}
	if monthlyLimit > 0 {
		params.MonthlyLimit = &monthlyLimit
	}
	return params
}

func activeClient() (*cli.Client, error) {
	profile, err := cli.ActiveProfile()
	if err != nil {
		return nil, err
	}
	return cli.NewClient(profile), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "http://localhost:8080", "keyhub API base URL")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Session token from the dashboard (required)")
	loginCmd.Flags().StringVar(&loginName, "name", "default", "Profile name")
	if err := loginCmd.MarkFlagRequired("token"); err != nil {
		panic(err)
	}

	for _, c := range []*cobra.Command{keysCreateCmd, keysUpdateCmd} {
		c.Flags().StringVar(&keyName, "name", "", "Key name (required)")
		c.Flags().StringVar(&keyType, "type", "dev", "Key type: dev or live")
		c.Flags().IntVar(&monthlyLimit, "monthly-limit", 0, "Monthly usage limit (0 for none)")
		if err := c.MarkFlagRequired("name"); err != nil {
			panic(err)
		}
	}
	keysListCmd.Flags().BoolVar(&showFull, "show-full", false, "Print full key values instead of masked ones")

	summarizeCmd.Flags().StringVar(&summarizeKey, "key", "", "API key to authenticate with (required)")
	if err := summarizeCmd.MarkFlagRequired("key"); err != nil {
		panic(err)
	}

	keysCmd.AddCommand(keysListCmd, keysCreateCmd, keysUpdateCmd, keysDeleteCmd)
	rootCmd.AddCommand(loginCmd, profilesCmd, useCmd, keysCmd, validateCmd, summarizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if strings.Contains(err.Error(), "required flag") {
			fmt.Fprintln(os.Stderr, "")
			_ = rootCmd.Usage()
		}
		os.Exit(1)
	}
}
