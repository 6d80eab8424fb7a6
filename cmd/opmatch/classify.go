package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgerline/opmatch/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [description...]",
		Short: "Classify transaction descriptions",
		Long: `Classify one or more transaction descriptions against the active rule set.

Descriptions can be passed as arguments, read line by line from a file with
--file, or read as statement lines from a CSV file with --csv (columns:
date, amount, description). Each result shows the category, confidence,
matching method, and the auto/suggest/none decision.`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("file", "f", "", "read descriptions from file, one per line")
	cmd.Flags().String("csv", "", "read statement lines from a CSV file (date,amount,description)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, _ := cmd.Flags().GetString("file")
	csvFile, _ := cmd.Flags().GetString("csv")
	if file == "" && csvFile == "" && len(args) == 0 {
		return fmt.Errorf("provide descriptions as arguments or use --file or --csv")
	}

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if csvFile != "" {
		txns, err := readTransactions(csvFile)
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(txns)), "classifying")
		results := a.engine.ClassifyTransactions(txns)
		_ = bar.Finish()

		for i, result := range results {
			printTransactionResult(txns[i], result)
		}
		return nil
	}

	descriptions := args
	if file != "" {
		fromFile, err := readDescriptions(file)
		if err != nil {
			return err
		}
		descriptions = append(descriptions, fromFile...)
	}

	var results []model.MatchResult
	if len(descriptions) > 1 {
		bar := progressbar.Default(int64(len(descriptions)), "classifying")
		results = a.engine.ClassifyBatch(descriptions)
		_ = bar.Finish()
	} else {
		results = []model.MatchResult{a.engine.Classify(descriptions[0])}
	}

	for i, result := range results {
		printResult(descriptions[i], result)
	}

	return nil
}

func readDescriptions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptions file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var descriptions []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			descriptions = append(descriptions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read descriptions file: %w", err)
	}

	return descriptions, nil
}

// readTransactions parses statement lines from a CSV file with columns
// date (2006-01-02), amount, description. A header row is skipped if its
// amount column does not parse.
func readTransactions(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read statement file: %w", err)
	}

	var txns []model.Transaction
	for i, record := range records {
		amount, amountErr := decimal.NewFromString(strings.TrimSpace(record[1]))
		if amountErr != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("invalid amount %q on line %d: %w", record[1], i+1, amountErr)
		}

		date, dateErr := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if dateErr != nil {
			return nil, fmt.Errorf("invalid date %q on line %d: %w", record[0], i+1, dateErr)
		}

		txns = append(txns, model.NewTransaction(strings.TrimSpace(record[2]), amount, date))
	}

	return txns, nil
}

func printResult(description string, result model.MatchResult) {
	if result.Decision == model.DecisionNone {
		fmt.Printf("%-50s -> unclassified\n", description)
		return
	}

	ruleID := int64(0)
	if result.MatchedRuleID != nil {
		ruleID = *result.MatchedRuleID
	}
	fmt.Printf("%-50s -> %s (%.1f%%, %s, %s, rule %d)\n",
		description, result.Category, result.Confidence, result.Method, result.Decision, ruleID)
}

func printTransactionResult(txn model.Transaction, result model.MatchResult) {
	category := "unclassified"
	if result.Decision != model.DecisionNone {
		category = fmt.Sprintf("%s (%.1f%%, %s)", result.Category, result.Confidence, result.Method)
	}
	fmt.Printf("%s  %10s  %-40s -> %s\n",
		txn.Date.Format("2006-01-02"), txn.Amount.StringFixed(2), txn.Description, category)
}
