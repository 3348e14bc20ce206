package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/fatih/color"

	"github.com/calev/chessmind/internal/engine"
	"github.com/calev/chessmind/internal/feature"
	"github.com/calev/chessmind/internal/model"
	"github.com/calev/chessmind/internal/pipeline"
	"github.com/calev/chessmind/internal/storage"
)

var (
	fen       = flag.String("fen", dragon.Startpos, "position to search, in FEN")
	depth     = flag.Int("depth", 0, "search depth in plies (0 = stored preference)")
	evalFlag  = flag.String("eval", "", "evaluation strategy: heuristic or model (default: stored preference)")
	cachePath = flag.String("cache", "", "position cache file (default: platform data dir)")
	modelPath = flag.String("model", "", "classifier artifact file (default: platform data dir)")

	trainRun        = flag.Bool("train", false, "run the training pipeline instead of searching")
	trainPGN        = flag.String("train.pgn", "", "directory of PGN files to train on")
	trainPartitions = flag.Int("train.partitions", 8, "number of game partitions for mini-batches")
	trainDownsample = flag.Int("train.downsample", 0, "cap on games read (0 = all)")
	trainRate       = flag.Float64("train.rate", model.DefaultLearningRate, "SGD learning rate")
)

func main() {
	flag.Parse()

	if err := realMain(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
	os.Exit(0)
}

func realMain() error {
	store, err := storage.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	if *trainRun {
		return train(store)
	}
	return search(store)
}

// search runs one move decision for the requested position.
func search(store *storage.Storage) error {
	prefs, err := store.LoadPreferences()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	cfg, searchDepth, err := resolveConfig(prefs)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	board := dragon.ParseFen(*fen)
	move, value, err := eng.BestMove(&board, searchDepth)
	if err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Printf("bestmove %s\n", move.String())
	fmt.Printf("valuation %.4f (%s, depth %d)\n", value, cfg.Mode, searchDepth)
	log.Printf("searched %d nodes, cache %d positions (%.1f%% hits)",
		eng.Nodes(), eng.Cache().Len(), eng.Cache().HitRate())
	return nil
}

// resolveConfig merges flags over stored preferences over platform defaults.
func resolveConfig(prefs *storage.Preferences) (engine.Config, int, error) {
	cfg := engine.Config{
		CachePath: *cachePath,
		ModelPath: *modelPath,
		Mode:      prefs.Mode,
	}

	switch *evalFlag {
	case "":
	case "heuristic":
		cfg.Mode = engine.EvalHeuristic
	case "model":
		cfg.Mode = engine.EvalModel
	default:
		return cfg, 0, fmt.Errorf("unknown eval strategy %q", *evalFlag)
	}

	if cfg.CachePath == "" {
		cfg.CachePath = prefs.CachePath
	}
	if cfg.CachePath == "" {
		path, err := storage.GetCacheFilePath()
		if err != nil {
			return cfg, 0, err
		}
		cfg.CachePath = path
	}

	if cfg.ModelPath == "" {
		cfg.ModelPath = prefs.ModelPath
	}
	if cfg.ModelPath == "" && cfg.Mode == engine.EvalModel {
		path, err := storage.GetModelPath()
		if err != nil {
			return cfg, 0, err
		}
		cfg.ModelPath = path
	}

	searchDepth := *depth
	if searchDepth <= 0 {
		searchDepth = prefs.Depth
	}
	return cfg, searchDepth, nil
}

// train fits a fresh classifier from PGN data and saves the artifact.
func train(store *storage.Storage) error {
	if *trainPGN == "" {
		return fmt.Errorf("-train.pgn is required with -train")
	}

	outPath := *modelPath
	if outPath == "" {
		path, err := storage.GetModelPath()
		if err != nil {
			return err
		}
		outPath = path
	}

	classifier := model.NewClassifier(feature.VectorSize, *trainRate)
	p := pipeline.New(*trainPGN, classifier, store)

	log.Printf("training from %s (%d partitions)", *trainPGN, *trainPartitions)
	if err := p.Run(*trainPartitions, *trainDownsample, outPath); err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Printf("model written to %s\n", outPath)
	return nil
}
