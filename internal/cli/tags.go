package cli

import (
	"fmt"
	"regexp"

	"github.com/solconf/solconf/internal/models"
	"github.com/solconf/solconf/internal/services"
	"github.com/spf13/cobra"
)

// Tag names are validated locally before any request goes out.
var tagNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage parameter tags",
	}
	cmd.AddCommand(newTagsListCmd(), newTagsCreateCmd(), newTagsDeleteCmd())
	return cmd
}

func newTagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			tags, err := client.ListTags()
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Println("No tags defined")
				return nil
			}
			for _, tag := range tags {
				fmt.Printf("%s\t%s\n", tag.ID, tag.Name)
			}
			return nil
		},
	}
}

func newTagsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !tagNamePattern.MatchString(name) {
				return fmt.Errorf("invalid tag name %q: only letters, numbers, underscores and hyphens are allowed (max 255 chars)", name)
			}

			if err := requireSession(); err != nil {
				return err
			}
			tag, err := client.CreateTag(name)
			if err != nil {
				return err
			}
			fmt.Printf("Created tag %s (%s)\n", tag.Name, tag.ID)
			return nil
		},
	}
}

func newTagsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag",
		Long:  "Delete a tag. Tags still referenced by parameters are refused unless --force is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			tag, err := findTagByName(args[0])
			if err != nil {
				return err
			}

			// A parameter search scoped to this tag decides whether the
			// delete is safe; a referenced tag is refused with the count
			// so the operator knows the blast radius.
			params, err := client.SearchParameters(&services.SearchParametersRequest{
				Tags: []string{tag.Name},
			})
			if err != nil {
				return err
			}
			if len(params) > 0 && !force {
				return fmt.Errorf("tag %q is used by %d parameter(s); use --force to delete anyway", tag.Name, len(params))
			}

			if err := client.DeleteTag(tag.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted tag %s\n", tag.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete even when parameters still reference the tag")
	return cmd
}

func findTagByName(name string) (*models.Tag, error) {
	tags, err := client.ListTags()
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].Name == name {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q not found", name)
}
