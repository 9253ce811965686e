package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-allocation-api/internal/catalog"
	"github.com/noah-isme/exam-allocation-api/internal/models"
	"github.com/noah-isme/exam-allocation-api/internal/service"
	"github.com/noah-isme/exam-allocation-api/pkg/config"
	"github.com/noah-isme/exam-allocation-api/pkg/logger"
)

func main() {
	v, err := loadOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.FromViper(v)
	cfg.Log.Level = v.GetString("log-level")
	cfg.Log.Format = "console"
	logr, err := logger.NewStderr(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	opts, err := optionsFrom(v)
	if err != nil {
		logr.Fatal("invalid options", zap.Error(err))
	}

	cat, err := catalog.LoadDir(opts.DataDir)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.String("dir", opts.DataDir), zap.Error(err))
	}

	out := io.Writer(os.Stdout)
	if path := v.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logr.Fatal("failed to create output", zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	report, err := newPlanner(cat, logr).Run(context.Background(), opts)
	if err != nil {
		logr.Fatal("planning failed", zap.Error(err))
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logr.Fatal("failed to write report", zap.Error(err))
	}
}

func loadOptions(args []string) (*viper.Viper, error) {
	flags := pflag.NewFlagSet("exam-planner", pflag.ContinueOnError)
	flags.String("data", ".", "directory holding subjects.csv, students.csv, halls.csv, teachers.csv and optional holidays.yaml")
	flags.String("category", string(models.CategorySemester), "SEMESTER or INTERNAL")
	flags.Int("year", 1, "year of study (1-8)")
	flags.String("parity", string(models.ParityOdd), "ODD or EVEN semester")
	flags.String("start", "", "first exam date (DD.MM.YYYY)")
	flags.String("end", "", "last exam date (DD.MM.YYYY)")
	flags.String("policy", "", "GAP_CONSTRAINED, ROUND_ROBIN or FIXED_SLOT (default by category)")
	flags.String("weekend", "", "SUNDAY or SATURDAY_SUNDAY (overrides holidays.yaml)")
	flags.String("mode", "", "ONE_PER_BENCH or TWO_PER_BENCH (default by category)")
	flags.Int64("seed", service.DefaultSeatingSeed, "seating shuffle seed")
	flags.String("output", "", "write the JSON report here instead of stdout")
	flags.String("log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	config.SetDefaults(v)
	v.SetEnvPrefix("EXAM_PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func optionsFrom(v *viper.Viper) (planOptions, error) {
	opts := planOptions{
		DataDir:     v.GetString("data"),
		Category:    models.ExamCategory(strings.ToUpper(v.GetString("category"))),
		Year:        v.GetInt("year"),
		Parity:      models.SemesterParity(strings.ToUpper(v.GetString("parity"))),
		StartDate:   v.GetString("start"),
		EndDate:     v.GetString("end"),
		Policy:      models.SchedulingPolicy(strings.ToUpper(v.GetString("policy"))),
		WeekendMode: strings.ToUpper(v.GetString("weekend")),
		Mode:        models.OccupancyMode(strings.ToUpper(v.GetString("mode"))),
		Seed:        v.GetInt64("seed"),
	}
	if opts.StartDate == "" || opts.EndDate == "" {
		return opts, fmt.Errorf("--start and --end are required")
	}
	if opts.Category != models.CategorySemester && opts.Category != models.CategoryInternal {
		return opts, fmt.Errorf("unknown category %q", opts.Category)
	}
	if !opts.Parity.Valid() {
		return opts, fmt.Errorf("unknown parity %q", opts.Parity)
	}
	if opts.Year < 1 || opts.Year > 8 {
		return opts, fmt.Errorf("year must be between 1 and 8")
	}
	return opts, nil
}
