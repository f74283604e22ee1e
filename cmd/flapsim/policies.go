package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/policy"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List available policies",
	Long:  `Shows the decision policies registered with flapsim.`,
	Args:  cobra.NoArgs,
	Run:   runPolicies,
}

func runPolicies(_ *cobra.Command, _ []string) {
	names := policy.List()

	if len(names) == 0 {
		fmt.Println("No policies available.")
		return
	}

	fmt.Println("Available policies:")
	fmt.Println()
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
	fmt.Println("Run 'flapsim run <policy> --weights w0,w1,w2,bias' to play an episode.")
}
