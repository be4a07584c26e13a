package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskflow/slotbooker/internal/gcal"
	"github.com/deskflow/slotbooker/internal/ledger"
	"github.com/deskflow/slotbooker/internal/logging"
	"github.com/deskflow/slotbooker/internal/scheduling"
)

// readPolicyFile loads and validates a scheduling policy from a JSON file.
func readPolicyFile(path string) (*scheduling.Policy, error) {
	slurp, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	var in scheduling.PolicyInput
	if err := json.Unmarshal(slurp, &in); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return scheduling.NewPolicy(in)
}

func newAvailabilityCmd() *cobra.Command {
	var (
		tenant     string
		policyFile string
		ledgerPath string
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print bookable slots for a tenant",
		Long: `Compute and print the bookable appointment slots for a tenant from its
scheduling policy file and its Google Calendar.

The policy file is a JSON document with the tenant's timezone, business
hours, slot shape and booking caps, matching the arguments of the
scheduling_get_available_slots MCP tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := readPolicyFile(policyFile)
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := gcal.NewClientForAccount(ctx, tenant)
			if err != nil {
				return fmt.Errorf("failed to create calendar client for tenant %s: %w", tenant, err)
			}
			client = client.WithLogger(logging.DefaultLogger())

			quota := &scheduling.QuotaTracker{}
			if ledgerPath != "" {
				store, err := ledger.Open(ledgerPath)
				if err != nil {
					return fmt.Errorf("failed to open booking ledger: %w", err)
				}
				defer store.Close()
				quota.Ledger = store
			}

			svc := &scheduling.AvailabilityService{
				Source: client,
				Quota:  quota,
			}

			slots, err := svc.AvailableSlots(ctx, tenant, policy)
			if err != nil {
				return fmt.Errorf("failed to compute availability: %w", err)
			}

			if len(slots) == 0 {
				fmt.Println("No bookable slots in the policy horizon")
				return nil
			}

			fmt.Printf("%d bookable slot(s) for tenant %s:\n", len(slots), tenant)
			for _, s := range slots {
				local := s.Start.In(policy.Location)
				fmt.Printf("  %s  (%s - %s %s)\n",
					s.Start.UTC().Format(time.RFC3339),
					local.Format("Mon Jan 2 15:04"),
					s.End.In(policy.Location).Format("15:04"),
					policy.Timezone)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "default", "Tenant account name to use (default: 'default')")
	cmd.Flags().StringVar(&policyFile, "policy", "policy.json", "Path to the scheduling policy JSON file")
	cmd.Flags().StringVar(&ledgerPath, "ledger-path", "", "Path to the SQLite booking ledger (optional)")

	return cmd
}
