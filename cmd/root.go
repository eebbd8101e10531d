package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/nix-sbom-builder/internal/graph"
	"github.com/StinkyLord/nix-sbom-builder/internal/model"
	"github.com/StinkyLord/nix-sbom-builder/internal/nix"
	"github.com/StinkyLord/nix-sbom-builder/internal/output"
)

const toolVersion = "1.0.0"

var (
	flagFile          string
	flagCurrentSystem bool
	flagFormat        string
	flagSerialization string
	flagOutput        string
	flagMetaPath      string
	flagNoMeta        bool
	flagRuntimeOnly   bool
	flagCompact       bool
	flagIncludeStdenv bool
	flagMaxDepth      int
	flagVerbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "nix-sbom-builder",
	Short: "Nix SBOM Generation Engine",
	Long: `nix-sbom-builder extracts a Software Bill of Materials (SBOM) from a Nix
derivation. It resolves the recursive derivation store into a semantic
package dependency graph, infers package identity (name, version, purl)
where metadata is missing, and emits the graph in several encodings:
  cyclonedx   CycloneDX 1.4, JSON or YAML
  spdx        SPDX 2.3, JSON
  native      flat per-package records, JSON or YAML
  pretty      indented human-readable tree
  stats       aggregate graph statistics`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an SBOM from a Nix derivation",
	Long: `Resolve a derivation (or the current system profile) into a package graph
and write it out in the selected SBOM format.

Examples:
  nix-sbom-builder generate --file ./result --output sbom.json
  nix-sbom-builder generate --current-system --format spdx --output -
  nix-sbom-builder generate --file ./result --format native --serialization yaml`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Path of the derivation to extract an SBOM from")
	generateCmd.Flags().BoolVar(&flagCurrentSystem, "current-system", false, "Generate an SBOM for the current system profile")
	generateCmd.Flags().StringVar(&flagFormat, "format", "cyclonedx", "Output format: cyclonedx, spdx, native, pretty, stats")
	generateCmd.Flags().StringVar(&flagSerialization, "serialization", "json", "Document encoding: json or yaml")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", "Output file path (use '-' for stdout)")
	generateCmd.Flags().StringVar(&flagMetaPath, "meta", "",
		"Path to a pre-exported package metadata snapshot (nix-env -qa --meta --json).\n"+
			"Without this flag the metadata is collected from the local store.")
	generateCmd.Flags().BoolVar(&flagNoMeta, "no-meta", false, "Do not collect package metadata")
	generateCmd.Flags().BoolVar(&flagRuntimeOnly, "runtime-only", false,
		"Restrict the output to derivations reachable through ordinary dependency\n"+
			"edges, leaving out patch and source-archive derivations.")
	generateCmd.Flags().BoolVar(&flagCompact, "compact", false, "Emit compact JSON instead of indented JSON")
	generateCmd.Flags().BoolVar(&flagIncludeStdenv, "include-stdenv", false,
		"Include standard-toolchain packages (autoconf, libtool, zlib, ...) in\n"+
			"pretty-printed output.")
	generateCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "Maximum tree depth for pretty-printed output (0 = unlimited)")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. The level comes from the
// NIX_SBOM_LOG_LEVEL environment variable; --verbose forces debug.
func newLogger() hclog.Logger {
	level := hclog.Info
	if env := os.Getenv("NIX_SBOM_LOG_LEVEL"); env != "" {
		level = hclog.LevelFromString(env)
		if level == hclog.NoLevel {
			fmt.Fprintf(os.Stderr, "Invalid log level value %q\n", env)
			level = hclog.Info
		}
	}
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "nix-sbom-builder",
		Level:  level,
		Output: os.Stderr,
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	format, err := output.FormatFromString(flagFormat)
	if err != nil {
		return err
	}
	serialization, err := output.SerializationFromString(flagSerialization)
	if err != nil {
		return err
	}

	var derivations model.Derivations
	switch {
	case flagFile != "":
		derivations, err = nix.LoadDerivations(flagFile, logger)
	case flagCurrentSystem:
		derivations, err = nix.LoadCurrentSystem(logger)
	default:
		return fmt.Errorf("must provide --file or --current-system")
	}
	if err != nil {
		return fmt.Errorf("failed to load derivations: %w", err)
	}

	packages := model.Packages{}
	if !flagNoMeta {
		packages, err = nix.LoadPackages(flagMetaPath, logger)
		if err != nil {
			return fmt.Errorf("failed to load package metadata: %w", err)
		}
	}

	g, err := graph.Build(derivations, packages, logger)
	if err != nil {
		return fmt.Errorf("failed to build package graph: %w", err)
	}
	logger.Info("built package graph", "nodes", len(g.Nodes), "roots", len(g.Roots))

	opts := output.Options{
		Serialization: serialization,
		Compact:       flagCompact,
		RuntimeOnly:   flagRuntimeOnly,
		ToolVersion:   toolVersion,
		Display: graph.DisplayOptions{
			MaxDepth:      flagMaxDepth,
			IncludeStdenv: flagIncludeStdenv,
		},
	}
	if err := output.Write(g, format, opts, flagOutput); err != nil {
		return err
	}

	if flagOutput != "-" {
		fmt.Fprintf(os.Stderr, "SBOM written to: %s\n", flagOutput)
	}
	return nil
}
