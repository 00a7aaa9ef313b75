// Command tsreg-batch runs one pipeline stage on a local CSV file against
// the configured store, without the HTTP server.
//
//	tsreg-batch -stage train -file vendas.csv -target vendas
//	tsreg-batch -stage evaluate -file teste.csv -target vendas
//	tsreg-batch -stage predict -file novos.csv -out previsoes.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ezoic/tsreg/codec"
	"github.com/ezoic/tsreg/config"
	"github.com/ezoic/tsreg/pipeline"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	stage := flag.String("stage", "train", "train, evaluate or predict")
	file := flag.String("file", "", "input CSV file")
	target := flag.String("target", "", "target column (train and evaluate)")
	out := flag.String("out", "", "write the predictions CSV here (predict)")
	flag.Parse()

	if err := run(*configPath, *stage, *file, *target, *out); err != nil {
		fmt.Fprintf(os.Stderr, "tsreg-batch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, stage, file, target, out string) error {
	if file == "" {
		return errors.New("-file is required")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log.SetupConsoleLogger(cfg.LogLevel)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	tbl, err := codec.ParseCSV(f)
	if err != nil {
		return err
	}

	svc := pipeline.NewService(store, cfg.Renderer(), cfg.PipelineOptions())

	switch stage {
	case "train":
		rep, err := svc.Train(ctx, tbl, target)
		if err != nil {
			return err
		}
		for _, fs := range rep.Folds {
			fmt.Fprintf(os.Stdout, "fold %d: train=%d test=%d r2=%.4f rmse=%.4f\n",
				fs.Fold, fs.TrainSize, fs.TestSize, fs.R2, fs.RMSE)
		}
		fmt.Fprintf(os.Stdout, "mean r2=%.4f rmse=%.4f samples=%d\n", rep.MeanR2, rep.MeanRMSE, rep.Samples)
		fmt.Fprintf(os.Stdout, "chart: %s\n", rep.ChartURL)

	case "evaluate":
		rep, err := svc.Evaluate(ctx, tbl, target)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "model: %s\n", rep.ModelSource)
		fmt.Fprintf(os.Stdout, "r2=%.4f rmse=%.4f samples=%d\n", rep.R2, rep.RMSE, rep.Samples)
		fmt.Fprintf(os.Stdout, "chart: %s\n", rep.ChartURL)

	case "predict":
		rep, err := svc.Predict(ctx, tbl)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "predictions: %d\n", rep.Samples)
		fmt.Fprintf(os.Stdout, "chart: %s\n", rep.ChartURL)
		if out != "" {
			return writePredictions(ctx, svc, out)
		}

	default:
		return errors.Newf("unknown stage %q", stage)
	}
	return nil
}

func writePredictions(ctx context.Context, svc *pipeline.Service, path string) error {
	tbl, err := svc.PredictionsTable(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := codec.WriteCSV(f, tbl); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
