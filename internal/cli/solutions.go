package cli

import (
	"fmt"
	"os"

	"github.com/solconf/solconf/internal/services"
	"github.com/spf13/cobra"
)

func newSolutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solutions",
		Short: "Manage configuration solutions",
	}
	cmd.AddCommand(
		newSolutionsListCmd(),
		newSolutionsShowCmd(),
		newSolutionsCreateCmd(),
		newSolutionsUpdateCmd(),
		newSolutionsDeleteCmd(),
		newSolutionsExportCmd(),
	)
	return cmd
}

func newSolutionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			solutions, err := client.ListSolutions()
			if err != nil {
				return err
			}
			for _, s := range solutions {
				fmt.Printf("%s\t%s\t%s\n", s.ID, s.Name, s.Description)
			}
			return nil
		},
	}
}

func newSolutionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a solution and its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			solution, err := client.GetSolution(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Solution: %s\n", solution.Name)
			if solution.Description != "" {
				fmt.Printf("Description: %s\n", solution.Description)
			}
			fmt.Printf("Parameters: %d\n", len(solution.Parameters))
			for _, p := range solution.Parameters {
				value := p.Value
				if p.IsSecret {
					value = "<hidden>"
				}
				fmt.Printf("  %s = %s\n", p.Key, value)
			}
			return nil
		},
	}
}

func newSolutionsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			solution, err := client.CreateSolution(args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("Created solution %s (%s)\n", solution.Name, solution.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Solution description")
	return cmd
}

func newSolutionsUpdateCmd() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a solution or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			// Only flags the user actually set go into the request, so
			// an omitted field keeps its current value.
			req := &services.UpdateSolutionRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Name == nil && req.Description == nil {
				return fmt.Errorf("nothing to update: pass --name or --description")
			}

			solution, err := client.UpdateSolution(args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("Updated solution %s\n", solution.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New solution name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	return cmd
}

func newSolutionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a solution (its parameters become unassigned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			if err := client.DeleteSolution(args[0]); err != nil {
				return err
			}
			fmt.Println("Solution deleted")
			return nil
		},
	}
}

func newSolutionsExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a solution's configuration (secrets redacted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			content, err := client.ExportSolution(args[0], format)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Print(string(content))
				return nil
			}
			if err := os.WriteFile(output, content, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json, yaml, env, properties)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
