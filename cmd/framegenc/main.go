/*
Copyright 2025 The FrameGen Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// framegenc is the companion tool for the framegen layer: it emits the
// loader manifest and inspects the effective configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegen/framegen"
)

func main() {
	root := &cobra.Command{
		Use:           "framegenc",
		Short:         "FrameGen layer companion tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(manifestCmd(), configCmd(), infoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func manifestCmd() *cobra.Command {
	var libraryPath, outPath string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Write the loader manifest JSON",
		RunE: func(_ *cobra.Command, _ []string) error {
			m := framegen.NewManifest(libraryPath)
			if outPath == "-" {
				data, err := m.MarshalIndentJSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			return m.WriteFile(outPath)
		},
	}

	cmd.Flags().StringVar(&libraryPath, "library", "libframegen.so", "shared object path recorded in the manifest")
	cmd.Flags().StringVarP(&outPath, "out", "o", "framegen.json", "output path, - for stdout")
	return cmd
}

func configCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective layer configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := framegen.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			fmt.Println(cfg.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "explicit config file")
	return cmd
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the layer identity",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s %s\n", framegen.LayerName, framegen.LayerDescription)
		},
	}
}
