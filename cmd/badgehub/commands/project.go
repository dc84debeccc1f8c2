package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/internal/cli/output"
	"github.com/badgehub/badgehub/internal/cli/prompt"
	"github.com/badgehub/badgehub/pkg/metadata"
)

var (
	showRevision string
	showOutput   string
	deleteForce  bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect and manage projects",
}

var projectShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a project at a revision",
	Long: `Show a project with one of its versions and that version's files.

--revision accepts draft, latest (the newest published revision) or an
exact revision number.

Examples:
  badgehub project show snake
  badgehub project show snake --revision draft -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectShow,
}

var projectPublishCmd = &cobra.Command{
	Use:   "publish <slug>",
	Short: "Publish the current draft",
	Long: `Freeze the project's draft as a published revision and open a new
draft carrying the same app metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectPublish,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Soft-delete a project",
	Long: `Soft-delete a project. Its versions, files and events are kept but
the project is no longer returned by reads.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectDelete,
}

func init() {
	projectShowCmd.Flags().StringVar(&showRevision, "revision", "latest", "Revision to show (draft|latest|N)")
	projectShowCmd.Flags().StringVarP(&showOutput, "output", "o", "table", "Output format (table|json|yaml)")
	projectDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")

	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectPublishCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

// projectView is the printable form of ProjectDetails.
type projectView struct {
	Slug           string               `json:"slug" yaml:"slug"`
	Git            *string              `json:"git,omitempty" yaml:"git,omitempty"`
	LatestRevision *int                 `json:"latest_revision" yaml:"latest_revision"`
	DraftRevision  *int                 `json:"draft_revision" yaml:"draft_revision"`
	Revision       int                  `json:"revision" yaml:"revision"`
	PublishedAt    *time.Time           `json:"published_at" yaml:"published_at"`
	AppMetadata    metadata.AppMetadata `json:"app_metadata" yaml:"-"`
	Files          []fileView           `json:"files" yaml:"files"`
}

type fileView struct {
	Path     string `json:"path" yaml:"path"`
	Mimetype string `json:"mimetype" yaml:"mimetype"`
	Size     string `json:"size" yaml:"size"`
	SHA256   string `json:"sha256" yaml:"sha256"`
}

func newProjectView(p *metadata.ProjectDetails) projectView {
	v := projectView{
		Slug:           p.Slug,
		Git:            p.Git,
		LatestRevision: p.LatestRevision,
		DraftRevision:  p.DraftRevision,
		Revision:       p.Version.Revision,
		PublishedAt:    p.Version.PublishedAt,
		AppMetadata:    p.Version.AppMetadata,
		Files:          make([]fileView, 0, len(p.Version.Files)),
	}
	for _, f := range p.Version.Files {
		v.Files = append(v.Files, fileView{
			Path:     f.FullPath,
			Mimetype: f.Mimetype,
			Size:     f.SizeFormatted,
			SHA256:   f.SHA256,
		})
	}
	return v
}

func (v projectView) Headers() []string {
	return output.KeyValues{}.Headers()
}

func (v projectView) Rows() [][]string {
	var kv output.KeyValues
	kv.Add("Slug", v.Slug)
	if v.Git != nil {
		kv.Add("Git", *v.Git)
	}
	if v.AppMetadata.Name != "" {
		kv.Add("Name", v.AppMetadata.Name)
	}
	kv.Add("Revision", strconv.Itoa(v.Revision))
	kv.Add("Latest", formatOptionalInt(v.LatestRevision))
	kv.Add("Draft", formatOptionalInt(v.DraftRevision))
	if v.PublishedAt != nil {
		kv.Add("Published", v.PublishedAt.Format(time.RFC3339))
	} else {
		kv.Add("Published", "no (draft)")
	}
	for _, f := range v.Files {
		kv.Add("File", fmt.Sprintf("%s (%s, %s)", f.Path, f.Size, f.Mimetype))
	}
	return kv.Rows()
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	slug := args[0]
	sel, err := metadata.ParseRevisionSelector(showRevision)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), "project show", func(ctx context.Context, svc *metadata.Service) error {
		p, err := svc.GetProject(ctx, slug, sel)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("project %q has no %s revision", slug, sel)
		}
		return output.NewPrinter(cmd.OutOrStdout(), format).Print(newProjectView(p))
	})
}

func runProjectPublish(cmd *cobra.Command, args []string) error {
	slug := args[0]
	return withService(cmd.Context(), "project publish", func(ctx context.Context, svc *metadata.Service) error {
		rev, err := svc.PublishVersion(ctx, slug)
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", slug, err)
		}
		output.NewPrinter(cmd.OutOrStdout(), output.FormatTable).
			Success(fmt.Sprintf("Published %s revision %d", slug, rev))
		return nil
	})
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	slug := args[0]
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete project %s?", slug), slug, deleteForce)
	if err != nil {
		return err
	}
	if !ok {
		return prompt.ErrAborted
	}

	return withService(cmd.Context(), "project delete", func(ctx context.Context, svc *metadata.Service) error {
		if err := svc.DeleteProject(ctx, slug); err != nil {
			return err
		}
		output.NewPrinter(cmd.OutOrStdout(), output.FormatTable).Success("Deleted " + slug)
		return nil
	})
}
