package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"divedata/agent"
	"divedata/config"
	"divedata/logger"
)

var version = "dev"

func main() {
	var (
		dataPath  string
		configDir string
	)

	rootCmd := &cobra.Command{
		Use:   "divedata",
		Short: "Chat with a CSV dataset: questions in, answers and charts out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(dataPath, configDir, false)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "path to the CSV file to explore (required)")
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", defaultConfigDir(), "configuration directory")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the report loop: summaries and EDA reports without charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(dataPath, configDir, true)
		},
	}
	rootCmd.AddCommand(reportCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("divedata", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home + string(os.PathSeparator) + ".divedata"
}

// runSession wires the session together and runs the interactive loop until
// the user types "exit".
func runSession(dataPath, configDir string, reportMode bool) error {
	if dataPath == "" {
		return fmt.Errorf("no dataset given, use --data <file.csv>")
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	log := logger.NewLogger()
	if err := os.MkdirAll(cfg.DataCacheDir, 0755); err == nil {
		if err := log.Init(cfg.DataCacheDir); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: logging disabled:", err)
		}
	}
	defer log.Close()

	ctx := context.Background()

	llm, err := agent.NewLLMService(ctx, cfg, log.Log)
	if err != nil {
		return err
	}

	session := NewChatService(cfg, llm, log.Log)
	defer session.Close()

	if err := session.LoadDataset(dataPath); err != nil {
		return err
	}

	schema := session.Schema()
	fmt.Printf("Loaded %d rows, %d columns (%d numeric, %d categorical, %d date)\n",
		schema.RowCount, len(schema.AllColumns),
		len(schema.NumericColumns), len(schema.CategoricalColumns), len(schema.DateColumns))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("Enter your query (or \"exit\" to quit):")
		fmt.Println(strings.Repeat("=", 70))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			fmt.Println("Exiting...")
			break
		}
		if strings.EqualFold(input, "clear") {
			session.ClearContext()
			fmt.Println("Conversation context cleared.")
			continue
		}

		fmt.Println(strings.Repeat("=", 70))
		if reportMode {
			text, err := session.SubmitReportQuery(ctx, input)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			fmt.Println(text)
		} else {
			result, err := session.SubmitQuery(ctx, input)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			fmt.Println(result.Text)
			if result.Chart != nil {
				fmt.Println(formatChartLine(result.Chart))
			}
		}
		fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
	}
	return scanner.Err()
}

// formatChartLine prints a one-line description of the planned chart; actual
// rendering belongs to the plotting collaborator.
func formatChartLine(spec *agent.ChartSpec) string {
	switch spec.Type {
	case agent.ChartScatter:
		return fmt.Sprintf("[chart] %s: %s (%d points)", spec.Type, spec.Title, len(spec.XValues))
	case agent.ChartHistogram, agent.ChartBox:
		return fmt.Sprintf("[chart] %s: %s (%d values)", spec.Type, spec.Title, len(spec.Values))
	default:
		return fmt.Sprintf("[chart] %s: %s (%d points)", spec.Type, spec.Title, len(spec.Labels))
	}
}
