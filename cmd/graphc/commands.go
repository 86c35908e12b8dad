package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	starplat "github.com/DemoGo/StarPlatWorkingBranch"
	"github.com/DemoGo/StarPlatWorkingBranch/artifact"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/config"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/ctxlog"
	"github.com/DemoGo/StarPlatWorkingBranch/programs"
)

type generateFlags struct {
	configPath string
	target     string
	outputDir  string
	baseName   string
	threads    int
	manifest   bool
	logLevel   string
	logFormat  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "graphc",
		Short:         "graphc - graph algorithm code generator",
		Long:          `graphc lowers graph programs to HIP, CUDA, OpenACC or OpenMP host and device code.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newGenerateCmd(stderr),
		newVerifyCmd(),
		newProgramsCmd(),
		newTargetsCmd(),
	)
	return root
}

func newGenerateCmd(stderr io.Writer) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate [pattern...]",
		Short: "Generate the artifacts of the programs matching the patterns",
		Long: `Generate writes <base>.h and <base>.<ext> for every catalog program whose
name matches one of the patterns (doublestar syntax). Without patterns the
programs listed in the config file are used, or every program.

The base name defaults to the program name. --base is only accepted when a
single program is selected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f)
			if err != nil {
				return err
			}
			logger, err := newLogger(stderr, cfg)
			if err != nil {
				return usageError("%v", err)
			}
			ctx := ctxlog.WithLogger(cmd.Context(), logger)

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Programs
			}
			entries, err := selectPrograms(patterns)
			if err != nil {
				return usageError("%v", err)
			}
			if cfg.BaseName != "" && len(entries) > 1 {
				return usageError("--base names one program, %d selected", len(entries))
			}
			return generate(ctx, cmd.OutOrStdout(), cfg, entries)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML or HCL settings file")
	flags.StringVarP(&f.target, "target", "t", "", "backend: "+strings.Join(starplat.Targets(), ", "))
	flags.StringVarP(&f.outputDir, "out", "o", "", "output directory or storage URL")
	flags.StringVar(&f.baseName, "base", "", "artifact base name")
	flags.IntVar(&f.threads, "threads", 0, "threads per block, 1 to 1024")
	flags.BoolVar(&f.manifest, "manifest", false, "also write <base>.manifest.yaml")
	flags.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", "", "text or json")
	return cmd
}

// resolveConfig layers explicitly set flags over the config file, or over
// the defaults when no file is given.
func resolveConfig(cmd *cobra.Command, f *generateFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, usageError("%v", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target = f.target
	}
	if flags.Changed("out") {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("base") {
		cfg.BaseName = f.baseName
	}
	if flags.Changed("threads") {
		cfg.ThreadsPerBlock = f.threads
	}
	if flags.Changed("manifest") {
		cfg.Manifest = f.manifest
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// selectPrograms unions the matches of every pattern, keeping catalog order.
func selectPrograms(patterns []string) ([]programs.Entry, error) {
	selected := make(map[string]bool)
	for _, p := range patterns {
		matches, err := programs.Match(p)
		if err != nil {
			return nil, err
		}
		for _, e := range matches {
			selected[e.Name] = true
		}
	}
	var out []programs.Entry
	for _, e := range programs.All() {
		if selected[e.Name] {
			out = append(out, e)
		}
	}
	return out, nil
}

func generate(ctx context.Context, w io.Writer, cfg *config.Config, entries []programs.Entry) error {
	logger := ctxlog.FromContext(ctx)
	writer := artifact.NewWriter()

	for _, e := range entries {
		base := e.Name
		if cfg.BaseName != "" {
			base = cfg.BaseName
		}
		res, err := starplat.Compile(ctx, e.Build(), starplat.Options{
			Target:          cfg.Target,
			FileName:        base,
			ThreadsPerBlock: cfg.ThreadsPerBlock,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}

		files := res.Files()
		if cfg.Manifest {
			data, err := artifact.NewManifest(e.Name, res.Target, files).Encode()
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}
			files = append(files, artifact.File{Name: artifact.ManifestName(res.BaseName), Content: data})
		}
		if err := writer.Write(ctx, cfg.OutputDir, files); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}

		logger.Info("Generated program", "program", e.Name, "target", res.Target, "dir", cfg.OutputDir)
		for _, file := range files {
			fmt.Fprintf(w, "%s\t%d bytes\n", file.Name, len(file.Content))
		}
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dir> <manifest>",
		Short: "Check artifacts against the digests of a manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, name := args[0], args[1]
			writer := artifact.NewWriter()
			data, err := writer.Read(cmd.Context(), dir, name)
			if err != nil {
				return err
			}
			m, err := artifact.DecodeManifest(data)
			if err != nil {
				return err
			}
			if err := m.Verify(cmd.Context(), writer, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d artifacts ok\n", m.Program, m.Target, len(m.Files))
			return nil
		},
	}
}

func newProgramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "programs [pattern]",
		Short: "List catalog programs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			entries, err := programs.Match(pattern)
			if err != nil {
				return usageError("%v", err)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", e.Name, e.Description)
			}
			return nil
		},
	}
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List backends and their artifact extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, t := range starplat.Targets() {
				emitter, err := starplat.NewEmitter(t, config.Default().ThreadsPerBlock)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-10s .h .%s\n", t, emitter.Model(), emitter.Extension())
			}
			return nil
		},
	}
}
