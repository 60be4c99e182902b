package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/app"
)

// newConnectCmd creates the 'connect' command.
func newConnectCmd() *cobra.Command {
	var accountID string
	var accessKey string
	var secretKey string
	var bucket string
	var endpoint string
	var save bool

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to an R2 bucket and verify the credentials",
		Long: `Connect to a Cloudflare R2 bucket. The connection is verified by
listing objects before anything is saved.

With --save, the credentials are encrypted with the machine-local key and
stored in the local database, so later commands reconnect automatically.

Examples:
  # Connect and save for later commands
  drive-engine connect --account-id abc123 --access-key AKIA... --bucket my-bucket --save

  # Secret key prompted interactively (hidden input)
  drive-engine connect --account-id abc123 --access-key AKIA... --bucket my-bucket --save

  # One-off connection test without saving
  drive-engine connect --account-id abc123 --access-key AKIA... --secret-key ... --bucket my-bucket`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" || accessKey == "" || bucket == "" {
				return fmt.Errorf("--account-id, --access-key and --bucket are required")
			}

			// Never require the secret on the command line; prompt when absent
			// so it stays out of shell history.
			if secretKey == "" {
				var err error
				secretKey, err = readPassword("Secret access key: ")
				if err != nil {
					return err
				}
				if secretKey == "" {
					return fmt.Errorf("secret access key is required")
				}
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			creds := app.Credentials{
				AccountID:       accountID,
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				Endpoint:        endpoint,
			}

			msg, err := eng.App.Connect(GetContext(), creds, bucket, save)
			if err != nil {
				fmt.Println("✗ Connection FAILED")
				return err
			}

			fmt.Printf("✓ %s\n", msg)
			if save {
				fmt.Printf("✓ Credentials saved for bucket: %s\n", bucket)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account-id", "", "Cloudflare account ID (required)")
	cmd.Flags().StringVar(&accessKey, "access-key", "", "R2 access key ID (required)")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "R2 secret access key (prompted if omitted)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name (required)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom endpoint URL (optional)")
	cmd.Flags().BoolVar(&save, "save", false, "Save credentials for later commands")

	return cmd
}

// newStatusCmd creates the 'status' command.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show saved credentials and probe the connection",
		Long: `Show which bucket has saved credentials and whether it is reachable.

The probe lists objects with the saved credentials, the same check used
by 'connect'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := GetContext()

			bucket, ok, err := eng.App.SavedBucket(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No saved credentials.")
				fmt.Println("Run 'drive-engine connect --save' to set up a bucket.")
				return nil
			}

			fmt.Printf("Saved bucket: %s\n", bucket)

			if _, err := eng.App.LoadAndConnect(ctx); err != nil {
				fmt.Println("Connection:   ✗ FAILED")
				fmt.Printf("  Error: %v\n", err)
				return nil
			}

			status := eng.App.CheckConnection(ctx)
			if status.Connected {
				fmt.Println("Connection:   ✓ OK")
			} else {
				fmt.Println("Connection:   ✗ FAILED")
				if status.Error != nil {
					fmt.Printf("  Error: %s\n", *status.Error)
				}
			}
			return nil
		},
	}

	return cmd
}
