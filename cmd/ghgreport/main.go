package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ghgreport/internal"
	"ghgreport/internal/config"
	"ghgreport/internal/factors"
	"ghgreport/internal/pipeline"
	"ghgreport/internal/rules"
	"ghgreport/internal/storage"
	"ghgreport/internal/units"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	vocab := rules.Default()
	if cfg.RulesFile != "" {
		vocab, err = rules.LoadFile(cfg.RulesFile)
		must(err)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "factors:load":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", cfg.FactorsFile, "factor CSV file (defaults to the built-in dataset)")
		_ = fs.Parse(os.Args[2:])
		list, err := loadFactors(*file)
		must(err)
		must(db.ReplaceFactors(list))
		fmt.Printf("factor table loaded: %d factors\n", len(list))
	case "factors:sync":
		svc := factors.NewSyncService(db, cfg)
		count, err := svc.Sync(context.Background())
		must(err)
		fmt.Printf("factor sync complete: %d factors\n", count)
	case "ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "activity file path")
		format := fs.String("format", "csv", "csv|xlsx")
		name := fs.String("name", "", "batch name (defaults to file name)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		result, err := pipeline.IngestFile(*input, *format)
		must(err)
		if result.Skipped > 0 {
			fmt.Printf("warning: %d rows skipped due to formatting issues\n", result.Skipped)
		}

		batchName := *name
		if batchName == "" {
			batchName = filepath.Base(*input)
		}
		batch, err := db.InsertBatch(batchName, *input, *format, fileHash(*input))
		must(err)
		must(db.ReplaceRawRecords(batch.ID, result.Records))
		fmt.Printf("ingested batch id=%d records=%d\n", batch.ID, len(result.Records))
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batchID := fs.Int("batchId", 0, "specific batch id")
		limit := fs.Int("batch", 20, "max pending batches")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg, vocab)
		if *batchID != 0 {
			res, err := processor.ProcessBatchID(*batchID)
			must(err)
			fmt.Printf("processed batch id=%d records=%d\n", res.BatchID, res.Processed)
			printSummary(res.Summary)
			return
		}
		processedBatches, processedRecords, err := processor.ProcessPending(*limit)
		must(err)
		fmt.Printf("processed pending batches=%d records=%d\n", processedBatches, processedRecords)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batchID := fs.Int("batchId", 0, "batch id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *batchID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--batchId and --out are required"))
		}
		records, err := db.GetResults(*batchID)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no results for batchId=%d", *batchID))
		}
		must(pipeline.ExportXLSX(records, pipeline.Aggregate(records), *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "activity file path")
		format := fs.String("format", "csv", "csv|xlsx")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		list, err := db.ListFactors()
		must(err)
		if len(list) == 0 {
			list, err = loadFactors(cfg.FactorsFile)
			must(err)
		}

		result, err := pipeline.IngestFile(*input, *format)
		must(err)
		fmt.Printf("loaded %d records\n", len(result.Records))
		if result.Skipped > 0 {
			fmt.Printf("warning: %d rows skipped due to formatting issues\n", result.Skipped)
		}

		p := pipeline.New(factors.BuildIndex(list), units.Default(), vocab, cfg.MatchKeywordThreshold)
		calculated, summary := p.Run(result.Records)
		must(pipeline.ExportXLSX(calculated, summary, *output))
		printSummary(summary)
		fmt.Printf("run done records=%d output=%s\n", len(calculated), *output)
	default:
		usage()
		os.Exit(1)
	}
}

func loadFactors(file string) ([]internal.EmissionFactor, error) {
	if strings.TrimSpace(file) == "" {
		return factors.Builtin()
	}
	return factors.LoadCSV(file)
}

func printSummary(s internal.Summary) {
	fmt.Printf("cleaned %d records, %d flagged with data-quality issues\n", s.TotalRecords, s.FlaggedCount)
	fmt.Printf("emission factors matched: %d/%d records\n", s.MatchedCount, s.TotalRecords)
	fmt.Printf("grand total: %.2f kg CO2e (%.3f t)\n", s.GrandTotalKg, s.GrandTotalTons)
	for _, sc := range s.Scopes {
		if sc.RecordCount == 0 {
			continue
		}
		fmt.Printf("  scope %-7s total=%.2f kg  count=%d  avg=%.2f kg  share=%.1f%%  records=%d\n",
			sc.Scope, sc.TotalKg, sc.Count, sc.AvgKg, sc.Percent, sc.RecordCount)
	}
}

func fileHash(path string) string {
	blob, err := os.ReadFile(path)
	if err != nil {
		sum := sha256.Sum256([]byte(path))
		return hex.EncodeToString(sum[:])
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func usage() {
	fmt.Println("usage: ghgreport <command>")
	fmt.Println("commands:")
	fmt.Println("  factors:load [--file=factors.csv]")
	fmt.Println("  factors:sync")
	fmt.Println("  ingest --input=activity.csv --format=csv|xlsx [--name=...]")
	fmt.Println("  process [--batchId=1] [--batch=20]")
	fmt.Println("  export:xlsx --batchId=1 --out=./out/report.xlsx")
	fmt.Println("  run --input=activity.csv --format=csv|xlsx --output=./out/report.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
