package cli

import (
	"fmt"

	"github.com/solconf/solconf/internal/services"
	"github.com/spf13/cobra"
)

func newPoolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "Manage compute pools",
	}
	cmd.AddCommand(
		newPoolsListCmd(),
		newPoolsCreateCmd(),
		newPoolsDeleteCmd(),
		newPoolsSuspendCmd(),
		newPoolsResumeCmd(),
	)
	return cmd
}

func newPoolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List compute pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			pools, err := client.ListPools()
			if err != nil {
				return err
			}
			for _, p := range pools {
				suspend := "manual"
				if p.AutoSuspendSecs > 0 {
					suspend = fmt.Sprintf("auto(%ds)", p.AutoSuspendSecs)
				}
				fmt.Printf("%d\t%s\t%s\tnodes=%d-%d\tsuspend=%s\n",
					p.ID, p.Name, p.State, p.MinNodes, p.MaxNodes, suspend)
			}
			return nil
		},
	}
}

func newPoolsCreateCmd() *cobra.Command {
	var (
		minNodes        int
		maxNodes        int
		instanceFamily  string
		autoResume      bool
		autoSuspendSecs int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a compute pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			req := &services.CreatePoolRequest{
				Name:            args[0],
				MinNodes:        minNodes,
				MaxNodes:        maxNodes,
				InstanceFamily:  instanceFamily,
				AutoSuspendSecs: autoSuspendSecs,
			}
			// auto-resume defaults server-side to on; only an explicit
			// flag overrides it, in either direction.
			if cmd.Flags().Changed("auto-resume") {
				req.AutoResume = &autoResume
			}

			pool, err := client.CreatePool(req)
			if err != nil {
				return err
			}
			fmt.Printf("Created pool %s (%d)\n", pool.Name, pool.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&minNodes, "min-nodes", 1, "Minimum node count")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 1, "Maximum node count")
	cmd.Flags().StringVar(&instanceFamily, "instance-family", "", "Instance family")
	cmd.Flags().BoolVar(&autoResume, "auto-resume", true, "Resume the pool automatically when a service starts")
	cmd.Flags().IntVar(&autoSuspendSecs, "auto-suspend-secs", 0, "Idle seconds before auto-suspend (0 disables)")
	return cmd
}

func newPoolsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a compute pool (refused while services reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := client.DeletePool(id); err != nil {
				return err
			}
			fmt.Println("Pool deleted")
			return nil
		},
	}
}

func newPoolsSuspendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suspend <id>",
		Short: "Suspend a compute pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pool, err := client.SuspendPool(id)
			if err != nil {
				return err
			}
			fmt.Printf("Pool %s: %s\n", pool.Name, pool.State)
			return nil
		},
	}
}

func newPoolsResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a compute pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pool, err := client.ResumePool(id)
			if err != nil {
				return err
			}
			fmt.Printf("Pool %s: %s\n", pool.Name, pool.State)
			return nil
		},
	}
}
