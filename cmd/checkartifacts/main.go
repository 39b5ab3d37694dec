package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"calorieburn/calories"
	"calorieburn/config"
	"calorieburn/ml"
)

func main() {
	configPath := flag.String("config", "", "config file (default: config.yaml in . or ..)")
	flag.Parse()

	path := *configPath
	if path == "" {
		found, err := config.Find("config.yaml")
		if err != nil {
			log.Fatalf("failed to find config: %v", err)
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	scaler, err := ml.LoadScaler(cfg.Artifacts.ScalerType, cfg.Artifacts.ScalerPath)
	if err != nil {
		log.Fatalf("failed to load scaler: %v", err)
	}
	model, err := ml.LoadModel(cfg.Artifacts.ModelType, cfg.Artifacts.ModelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	predictor, err := calories.NewHandler(scaler, model, calories.Options{})
	if err != nil {
		log.Fatalf("failed to create predictor: %v", err)
	}

	result, err := predictor.Submit(context.Background(), calories.DefaultInputs(), nil)
	if err != nil {
		log.Fatalf("default prediction failed: %v", err)
	}

	fmt.Printf("scaler: %s (%s)\n", cfg.Artifacts.ScalerPath, cfg.Artifacts.ScalerType)
	fmt.Printf("model:  %s (%s)\n", cfg.Artifacts.ModelPath, cfg.Artifacts.ModelType)
	fmt.Printf("columns: %s\n", strings.Join(ml.FeatureNames(), ", "))
	fmt.Printf("default inputs: %v\n", result.Features)
	fmt.Printf("default prediction: %s\n", result.Text)
}
