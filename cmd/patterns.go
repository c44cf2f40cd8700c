package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Print the active pattern library as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		data, err := lib.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
