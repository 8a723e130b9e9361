package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RCBiczok/terraces/pkg/matrix"
	"github.com/RCBiczok/terraces/pkg/pipeline"
)

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd(configPath *string) *cobra.Command {
	var (
		dataPath   string
		treePath   string
		outputPath string
		doCount    bool
		doEnum     bool
		doCompress bool
		doDetect   bool
		browse     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Count, enumerate, or detect the trees on a terrace",
		Long: `Analyze reads a presence/absence data matrix and a Newick supertree,
extracts the rooted-triple constraints the supertree implies per partition,
and answers questions about the terrace: its size (--count), its members
(--enumerate, --compress), or whether it holds more than one tree
(--detect). Without mode flags, --count is assumed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			m, newickString, err := readInputs(dataPath, treePath)
			if err != nil {
				return err
			}

			flags := 0
			if doCount {
				flags |= pipeline.FlagCount
			}
			if doEnum {
				flags |= pipeline.FlagEnumerate
			}
			if doCompress {
				flags |= pipeline.FlagEnumerateCompressed
			}
			if doDetect {
				flags |= pipeline.FlagDetect
			}
			if browse && flags&(pipeline.FlagEnumerate|pipeline.FlagEnumerateCompressed) == 0 {
				flags |= pipeline.FlagEnumerate
			}
			if flags == 0 {
				flags = pipeline.FlagCount
			}

			var out io.Writer
			var outFile *os.File
			var browseBuf *bytes.Buffer
			switch {
			case browse:
				browseBuf = &bytes.Buffer{}
				out = browseBuf
			case flags&(pipeline.FlagEnumerate|pipeline.FlagEnumerateCompressed) != 0:
				if outputPath == "" || outputPath == "-" {
					out = os.Stdout
				} else {
					outFile, err = os.Create(outputPath)
					if err != nil {
						return fmt.Errorf("create output file: %w", err)
					}
					defer outFile.Close()
					out = outFile
				}
			}

			resultCache, err := openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer resultCache.Close()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner := pipeline.NewRunner(resultCache, nil, store, logger)

			spinner := newSpinnerWithContext(ctx, "scanning terrace")
			spinner.Start()
			result, err := runner.Execute(ctx, m, newickString, flags, out,
				pipeline.Options{CompressThreshold: cfg.CompressThreshold})
			spinner.Stop()
			if err != nil {
				printError("analysis failed: %s", err)
				return err
			}

			printAnalysisResult(result, flags)
			if outFile != nil {
				printFile(outputPath)
			}
			if browse {
				trees := strings.Split(strings.TrimRight(browseBuf.String(), "\n"), "\n")
				return browseTrees(trees)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "presence/absence data file (required)")
	cmd.Flags().StringVarP(&treePath, "tree", "t", "", "newick supertree file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "destination for enumerated trees (default stdout)")
	cmd.Flags().BoolVar(&doCount, "count", false, "count the trees on the terrace")
	cmd.Flags().BoolVar(&doEnum, "enumerate", false, "write every tree on the terrace")
	cmd.Flags().BoolVar(&doCompress, "compress", false, "write every tree by expanding the compressed DAG")
	cmd.Flags().BoolVar(&doDetect, "detect", false, "only check whether the terrace holds more than one tree")
	cmd.Flags().BoolVar(&browse, "browse", false, "page through the enumerated trees interactively")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("tree")

	return cmd
}

// readInputs loads the data matrix and the Newick string from disk.
func readInputs(dataPath, treePath string) (*matrix.Matrix, string, error) {
	dataFile, err := os.Open(dataPath)
	if err != nil {
		return nil, "", fmt.Errorf("open data file: %w", err)
	}
	defer dataFile.Close()
	m, err := matrix.ParseData(dataFile)
	if err != nil {
		return nil, "", err
	}

	newickBytes, err := os.ReadFile(treePath)
	if err != nil {
		return nil, "", fmt.Errorf("read tree file: %w", err)
	}
	return m, strings.TrimSpace(string(newickBytes)), nil
}

// printAnalysisResult reports the requested answers with styled output.
func printAnalysisResult(result *pipeline.Result, flags int) {
	if flags&pipeline.FlagCount != 0 {
		printSuccess("terrace size: %s", StyleNumber.Render(result.TerraceSize.String()))
	}
	if flags&pipeline.FlagDetect != 0 {
		if result.OnTerrace {
			printSuccess("tree lies on a terrace with more than one member")
		} else {
			printInfo("tree is alone on its terrace")
		}
	}
	if flags&(pipeline.FlagEnumerate|pipeline.FlagEnumerateCompressed) != 0 {
		printSuccess("wrote %s trees", StyleNumber.Render(fmt.Sprintf("%d", result.TreesWritten)))
	}
	printDetail("%d constraints, %s", result.Constraints, result.Duration.Round(time.Millisecond))
}
