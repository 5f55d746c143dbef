package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	indexinguc "github.com/pickmyelective/electives/internal/usecase/indexing"
)

func verifyCMD(o *globalOptions) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a collection holds a usable index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := open(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.close()

			v, err := rt.svc.Verify(cmd.Context(), collection)
			if err != nil {
				return err
			}
			printVerification(v)
			if !v.IsValid {
				return fmt.Errorf("collection %s failed verification", v.Collection)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "collection or alias (default: index.collection)")

	return cmd
}

func swapCMD(o *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <target>",
		Short: "Point the served collection name at a verified run collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.svc.Swap(cmd.Context(), args[0]); err != nil {
				return err
			}
			color.Green("✓ %s now serves %s", rt.cfg.Index.Collection, args[0])
			return nil
		},
	}
	return cmd
}

func printVerification(v indexinguc.Verification) {
	status := color.GreenString("valid")
	if !v.IsValid {
		status = color.RedString("invalid")
	}
	fmt.Printf("Collection:  %s (%s)\n", v.Collection, status)
	fmt.Printf("Exists:      %t\n", v.CollectionExists)
	fmt.Printf("Documents:   %d\n", v.DocumentCount)
	fmt.Printf("Metadata:    %s\n", strings.Join(v.MetadataFields, ", "))
}
