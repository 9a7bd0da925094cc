package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/stats"
)

func main() {
	var (
		inputPath string
		date      string
		timezone  string
		pretty    bool
		th        = stats.DefaultThresholds()
	)

	flag.StringVar(&inputPath, "input", "snapshot.json", "JSON file with alunos, turmas and presencas")
	flag.StringVar(&date, "date", "", "Reference date (YYYY-MM-DD). Defaults to today")
	flag.StringVar(&timezone, "tz", "America/Sao_Paulo", "Time zone used to resolve today")
	flag.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	flag.IntVar(&th.RiskAbsences, "risk", th.RiskAbsences, "Absences above which a student counts towards the class ranking")
	flag.IntVar(&th.CriticalAbsences, "critical", th.CriticalAbsences, "Absences above which a student is critical")
	flag.Float64Var(&th.TrendMargin, "trend-margin", th.TrendMargin, "Percentage-point margin for the monthly trend")
	flag.Parse()

	in, err := loadSnapshot(inputPath)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}

	ref, err := referenceDate(date, timezone)
	if err != nil {
		log.Fatalf("invalid reference date: %v", err)
	}

	bundle := stats.Compute(in, ref, th)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(bundle); err != nil {
		log.Fatalf("failed to encode bundle: %v", err)
	}
}

func loadSnapshot(path string) (stats.Input, error) {
	var in stats.Input
	data, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("decode %s: %w", path, err)
	}
	return in, nil
}

func referenceDate(raw, timezone string) (models.Date, error) {
	if raw != "" {
		return models.ParseDate(raw)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return models.Date{}, err
	}
	return models.Today(time.Now(), loc), nil
}
