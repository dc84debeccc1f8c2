package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/internal/apitoken"
	"github.com/badgehub/badgehub/internal/cli/output"
	"github.com/badgehub/badgehub/internal/cli/prompt"
	"github.com/badgehub/badgehub/pkg/metadata"
)

var revokeForce bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage per-project API tokens",
	Long: `Each project has at most one API token. Only its bcrypt hash is
stored; the plaintext is printed once by 'token rotate'.`,
}

var tokenRotateCmd = &cobra.Command{
	Use:   "rotate <slug>",
	Short: "Issue a new token, replacing any existing one",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenRotate,
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <slug>",
	Short: "Revoke the project's token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenRevoke,
}

var tokenShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show when the token was created and last used",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenShow,
}

func init() {
	tokenRevokeCmd.Flags().BoolVarP(&revokeForce, "force", "f", false, "Skip confirmation")

	tokenCmd.AddCommand(tokenRotateCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	tokenCmd.AddCommand(tokenShowCmd)
}

func runTokenRotate(cmd *cobra.Command, args []string) error {
	slug := args[0]
	return withService(cmd.Context(), "token rotate", func(ctx context.Context, svc *metadata.Service) error {
		token, err := apitoken.Generate()
		if err != nil {
			return err
		}
		hash, err := apitoken.Hash(token)
		if err != nil {
			return err
		}
		if err := svc.CreateProjectAPIToken(ctx, slug, hash); err != nil {
			return fmt.Errorf("failed to store token for %s: %w", slug, err)
		}

		out := cmd.OutOrStdout()
		output.NewPrinter(out, output.FormatTable).Success("Token issued for " + slug)
		_, _ = fmt.Fprintf(out, "\n  %s\n\nStore it now. It cannot be shown again.\n", token)
		return nil
	})
}

func runTokenRevoke(cmd *cobra.Command, args []string) error {
	slug := args[0]
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Revoke the API token of %s?", slug), slug, revokeForce)
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrAborted
	}

	return withService(cmd.Context(), "token revoke", func(ctx context.Context, svc *metadata.Service) error {
		if err := svc.RevokeProjectAPIToken(ctx, slug); err != nil {
			return err
		}
		output.NewPrinter(cmd.OutOrStdout(), output.FormatTable).Success("Token revoked for " + slug)
		return nil
	})
}

func runTokenShow(cmd *cobra.Command, args []string) error {
	slug := args[0]
	return withService(cmd.Context(), "token show", func(ctx context.Context, svc *metadata.Service) error {
		m, err := svc.GetProjectAPITokenMetadata(ctx, slug)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("project %q has no API token", slug)
		}

		var kv output.KeyValues
		kv.Add("Project", m.ProjectSlug)
		kv.Add("Created", m.CreatedAt.Format(time.RFC3339))
		if m.LastUsedAt != nil {
			kv.Add("Last used", m.LastUsedAt.Format(time.RFC3339))
		} else {
			kv.Add("Last used", "never")
		}
		return output.PrintTable(cmd.OutOrStdout(), kv)
	})
}
