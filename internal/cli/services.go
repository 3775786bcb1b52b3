package cli

import (
	"fmt"
	"strconv"

	"github.com/solconf/solconf/internal/services"
	"github.com/spf13/cobra"
)

func newServicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage container services",
	}
	cmd.AddCommand(
		newServicesListCmd(),
		newServicesShowCmd(),
		newServicesCreateCmd(),
		newServicesDeleteCmd(),
		newServicesStartCmd(),
		newServicesStopCmd(),
	)
	return cmd
}

func newServicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List container services",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			list, err := client.ListServices()
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Printf("%d\t%s\t%s\tpool=%s\n", s.ID, s.Name, s.Status, s.ComputePool)
			}
			return nil
		},
	}
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func newServicesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a container service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := client.GetService(id)
			if err != nil {
				return err
			}
			fmt.Printf("Service: %s\n", svc.Name)
			fmt.Printf("Status: %s\n", svc.Status)
			fmt.Printf("Pool: %s\n", svc.ComputePool)
			fmt.Printf("Instances: %d-%d\n", svc.MinInstances, svc.MaxInstances)
			return nil
		},
	}
}

func newServicesCreateCmd() *cobra.Command {
	var (
		pool         string
		spec         string
		minInstances int
		maxInstances int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a container service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			svc, err := client.CreateService(&services.CreateServiceRequest{
				Name:         args[0],
				ComputePool:  pool,
				Spec:         spec,
				MinInstances: minInstances,
				MaxInstances: maxInstances,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created service %s (%d)\n", svc.Name, svc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&pool, "pool", "", "Compute pool the service runs in (required)")
	cmd.Flags().StringVar(&spec, "spec", "", "Service specification")
	cmd.Flags().IntVar(&minInstances, "min-instances", 1, "Minimum instance count")
	cmd.Flags().IntVar(&maxInstances, "max-instances", 1, "Maximum instance count")
	cmd.MarkFlagRequired("pool")
	return cmd
}

func newServicesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a container service (must be stopped first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteService(id); err != nil {
				return err
			}
			fmt.Println("Service deleted")
			return nil
		},
	}
}

func newServicesStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a container service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := client.StartService(id)
			if err != nil {
				return err
			}
			fmt.Printf("Service %s: %s\n", svc.Name, svc.Status)
			return nil
		},
	}
}

func newServicesStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id>",
		Short: "Stop a container service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := client.StopService(id)
			if err != nil {
				return err
			}
			fmt.Printf("Service %s: %s\n", svc.Name, svc.Status)
			return nil
		},
	}
}
