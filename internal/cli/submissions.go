package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/services"
)

func (st *cliState) newContributeCmd() *cobra.Command {
	var (
		fields                 models.Fields
		images, videos, audios []string
		user                   string
	)

	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Add a recipe with optional media files",
		Long: `contribute stores the given files and appends a new submission. Without
--user the recipe is attributed to "anonymous"; with --user the account
password is asked for first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var uploads []services.Upload
			for _, group := range []struct {
				kind  models.MediaKind
				paths []string
			}{
				{models.MediaImage, images},
				{models.MediaVideo, videos},
				{models.MediaAudio, audios},
			} {
				for _, p := range group.paths {
					data, err := os.ReadFile(p)
					if err != nil {
						return fmt.Errorf("read %s: %w", p, err)
					}
					uploads = append(uploads, services.Upload{Kind: group.kind, Name: filepath.Base(p), Data: data})
				}
			}

			var password string
			if user != "" {
				pw, err := st.readSecret("Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			return st.withBackend(ctx, func(b *backend) error {
				submittedBy := models.AnonymousUser
				if user != "" {
					acc, err := b.accounts.Authenticate(ctx, user, password)
					if err != nil {
						return err
					}
					submittedBy = acc.Username
				}

				id, err := b.submissions.Contribute(ctx, fields, uploads, submittedBy)
				if err != nil {
					return err
				}
				fmt.Fprintln(st.out, id)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&fields.RecipeName, "name", "", "recipe name")
	f.StringVar(&fields.Region, "region", "", "region the recipe comes from")
	f.StringVar(&fields.FoodType, "food-type", "", "food type label")
	f.StringVar(&fields.Ingredients, "ingredients", "", "ingredients, one per line")
	f.StringVar(&fields.Steps, "steps", "", "preparation steps")
	f.StringArrayVar(&images, "image", nil, "image file (repeatable)")
	f.StringArrayVar(&videos, "video", nil, "video file (repeatable)")
	f.StringArrayVar(&audios, "audio", nil, "audio file (repeatable)")
	f.StringVarP(&user, "user", "u", "", "attribute the recipe to this account")
	return cmd
}

func (st *cliState) newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withBackend(cmd.Context(), func(b *backend) error {
				subs, err := b.submissions.ListSubmissions(cmd.Context())
				if err != nil {
					return err
				}
				return printSubmissions(st.out, subs, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (st *cliState) newSearchCmd() *cobra.Command {
	var (
		filter models.SearchFilter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search submissions by text, region and food type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withBackend(cmd.Context(), func(b *backend) error {
				subs, err := b.submissions.Search(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printSubmissions(st.out, subs, asJSON)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&filter.Query, "query", "q", "", "text in name, region, ingredients or steps")
	f.StringVar(&filter.Region, "region", "", "region substring")
	f.StringVar(&filter.FoodType, "food-type", "", "exact food type label")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (st *cliState) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one submission as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withBackend(cmd.Context(), func(b *backend) error {
				sub, err := b.submissions.GetSubmission(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(st.out)
				enc.SetIndent("", "  ")
				return enc.Encode(sub)
			})
		},
	}
}

func printSubmissions(out io.Writer, subs []*models.Submission, asJSON bool) error {
	if asJSON {
		if subs == nil {
			subs = []*models.Submission{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}

	if len(subs) == 0 {
		_, err := fmt.Fprintln(out, "No submissions")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tREGION\tFOOD TYPE\tBY\tMEDIA")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.RecipeName, s.Region, s.FoodType, s.SubmittedBy, len(s.Attachments.All()))
	}
	return tw.Flush()
}
