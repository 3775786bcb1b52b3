package cli

import (
	"fmt"
	"strings"

	"github.com/solconf/solconf/internal/services"
	"github.com/spf13/cobra"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Manage configuration parameters",
	}
	cmd.AddCommand(
		newParamsListCmd(),
		newParamsShowCmd(),
		newParamsSearchCmd(),
		newParamsCreateCmd(),
		newParamsUpdateCmd(),
		newParamsDeleteCmd(),
		newParamsAssignCmd(),
		newParamsUnassignCmd(),
		newParamsUnassignedCmd(),
		newParamsBulkCmd(),
	)
	return cmd
}

func newParamsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			params, err := client.ListParameters()
			if err != nil {
				return err
			}
			for _, p := range params {
				value := p.Value
				if p.IsSecret {
					value = "<hidden>"
				}
				fmt.Printf("%s\t%s=%s\n", p.ID, p.Key, value)
			}
			return nil
		},
	}
}

func newParamsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			p, err := client.GetParameter(args[0])
			if err != nil {
				return err
			}
			value := p.Value
			if p.IsSecret {
				value = "<hidden>"
			}
			fmt.Printf("Key: %s\n", p.Key)
			fmt.Printf("Value: %s\n", value)
			if p.Description != "" {
				fmt.Printf("Description: %s\n", p.Description)
			}
			if p.SolutionID != nil {
				fmt.Printf("Solution: %s\n", *p.SolutionID)
			} else {
				fmt.Println("Solution: (unassigned)")
			}
			if len(p.Tags) > 0 {
				names := make([]string, 0, len(p.Tags))
				for _, t := range p.Tags {
					names = append(names, t.Name)
				}
				fmt.Printf("Tags: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newParamsSearchCmd() *cobra.Command {
	var (
		solutionID string
		keyPattern string
		secretOnly bool
		tags       []string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search parameters by key, solution, secret flag and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := &services.SearchParametersRequest{
				KeyPattern: keyPattern,
				Tags:       tags,
			}
			// --solution "" means "unassigned only", so the flag has to
			// be distinguished from its default.
			if cmd.Flags().Changed("solution") {
				req.SolutionID = &solutionID
			}
			if secretOnly {
				secret := true
				req.IsSecret = &secret
			}

			params, err := client.SearchParameters(req)
			if err != nil {
				return err
			}
			for _, p := range params {
				value := p.Value
				if p.IsSecret {
					value = "<hidden>"
				}
				names := make([]string, 0, len(p.Tags))
				for _, t := range p.Tags {
					names = append(names, t.Name)
				}
				fmt.Printf("%s\t%s=%s\t[%s]\n", p.ID, p.Key, value, strings.Join(names, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&solutionID, "solution", "", "Filter by solution ID (empty string for unassigned)")
	cmd.Flags().StringVar(&keyPattern, "key", "", "Filter by key substring")
	cmd.Flags().BoolVar(&secretOnly, "secret", false, "Only secret parameters")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Require tag (repeatable)")
	return cmd
}

func newParamsCreateCmd() *cobra.Command {
	var (
		value       string
		description string
		isSecret    bool
		solutionID  string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "create <key>",
		Short: "Create a parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := &services.CreateParameterRequest{
				Key:         args[0],
				Value:       value,
				Description: description,
				IsSecret:    isSecret,
				Tags:        tags,
			}
			if solutionID != "" {
				req.SolutionID = &solutionID
			}

			param, err := client.CreateParameter(req)
			if err != nil {
				return err
			}
			fmt.Printf("Created parameter %s (%s)\n", param.Key, param.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&value, "value", "v", "", "Parameter value")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Parameter description")
	cmd.Flags().BoolVar(&isSecret, "secret", false, "Mark the value as secret")
	cmd.Flags().StringVar(&solutionID, "solution", "", "Owning solution ID")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Attach tag (repeatable)")
	return cmd
}

func newParamsUpdateCmd() *cobra.Command {
	var (
		value       string
		description string
		isSecret    bool
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a parameter's value, description, secret flag or tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := &services.UpdateParameterRequest{}
			if cmd.Flags().Changed("value") {
				req.Value = &value
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("secret") {
				req.IsSecret = &isSecret
			}
			if cmd.Flags().Changed("tag") {
				req.Tags = tags
			}
			if req.Value == nil && req.Description == nil && req.IsSecret == nil && req.Tags == nil {
				return fmt.Errorf("nothing to update: pass --value, --description, --secret or --tag")
			}

			param, err := client.UpdateParameter(args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("Updated parameter %s\n", param.Key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&value, "value", "v", "", "New parameter value")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&isSecret, "secret", false, "Mark or unmark the value as secret")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace the tag set (repeatable)")
	return cmd
}

func newParamsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			if err := client.DeleteParameter(args[0]); err != nil {
				return err
			}
			fmt.Println("Parameter deleted")
			return nil
		},
	}
}

func newParamsAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <param-id> <solution-id>",
		Short: "Attach a parameter to a solution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			param, err := client.AssignParameter(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Parameter %s assigned\n", param.Key)
			return nil
		},
	}
}

func newParamsUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <param-id>",
		Short: "Detach a parameter from its solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			param, err := client.UnassignParameter(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Parameter %s unassigned\n", param.Key)
			return nil
		},
	}
}

func newParamsUnassignedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassigned",
		Short: "List parameters with no owning solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			params, err := client.ListUnassignedParameters()
			if err != nil {
				return err
			}
			for _, p := range params {
				fmt.Printf("%s\t%s\n", p.ID, p.Key)
			}
			return nil
		},
	}
}

func newParamsBulkCmd() *cobra.Command {
	var tagName string

	cmd := &cobra.Command{
		Use:   "bulk <delete|tag|untag> <id>...",
		Short: "Apply one operation to many parameters",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			result, err := client.BulkParameters(&services.BulkOperationRequest{
				Op:           args[0],
				ParameterIDs: args[1:],
				TagName:      tagName,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Affected: %d\n", result.Affected)
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tagName, "tag-name", "", "Tag name for tag/untag operations")
	return cmd
}
