// Package pipeline is the offline training pipeline: it parses PGN game
// records, partitions them into fixed-size buckets to bound memory,
// extracts per-position feature vectors and incrementally fits the
// classifier artifact the engine's model evaluation consumes.
package pipeline

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	dragon "github.com/Bubblyworld/dragontoothmg"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/notnil/chess"

	"github.com/calev/chessmind/internal/feature"
	"github.com/calev/chessmind/internal/model"
	"github.com/calev/chessmind/internal/storage"
)

// Batch is one training mini-batch: feature vectors and win labels
// (1 when White won the source game).
type Batch struct {
	Inputs [][]float64
	Labels []int
}

// Pipeline trains the classifier from a directory of PGN files.
type Pipeline struct {
	pgnDir     string
	classifier *model.Classifier
	store      *storage.Storage // optional run recording
	rng        *rand.Rand
}

// New creates a pipeline over the PGN files in pgnDir. store may be nil,
// in which case runs are not recorded.
func New(pgnDir string, classifier *model.Classifier, store *storage.Storage) *Pipeline {
	return &Pipeline{
		pgnDir:     pgnDir,
		classifier: classifier,
		store:      store,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// headersOK reports whether a game's record is clean enough to train on:
// it must carry a date and a decisive result. Unfinished games and draws
// are skipped.
func headersOK(game *chess.Game) bool {
	if tag := game.GetTagPair("Date"); tag == nil || tag.Value == "" {
		return false
	}
	outcome := game.Outcome()
	return outcome == chess.WhiteWon || outcome == chess.BlackWon
}

// hashGame produces a stable key for a game from its date and both
// player names. Two records collide only if the same players met on the
// same date.
func hashGame(game *chess.Game) uint64 {
	parts := make([]string, 0, 3)
	for _, key := range []string{"Date", "Black", "White"} {
		if tag := game.GetTagPair(key); tag != nil {
			parts = append(parts, tag.Value)
		}
	}
	return xxhash.Sum64String(strings.Join(parts, " "))
}

// PartitionGames reads every PGN file in the pipeline directory and
// spreads the clean games over numPartitions buckets by their game hash.
// Partitioning happens before feature extraction so that no more than
// one bucket's worth of positions is ever materialized at a time.
// downsample caps the total number of games read; 0 means no cap.
func (p *Pipeline) PartitionGames(numPartitions, downsample int) ([][]*chess.Game, error) {
	if numPartitions < 1 {
		return nil, fmt.Errorf("invalid partition count %d", numPartitions)
	}

	paths, err := filepath.Glob(filepath.Join(p.pgnDir, "*.pgn"))
	if err != nil {
		return nil, fmt.Errorf("failed to list PGN files in %s: %w", p.pgnDir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PGN files in %s", p.pgnDir)
	}

	partitions := make([][]*chess.Game, numPartitions)
	total := 0
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open PGN file %s: %w", path, err)
		}
		games, err := chess.GamesFromPGN(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse PGN file %s: %w", path, err)
		}

		for _, game := range games {
			if !headersOK(game) {
				continue
			}
			idx := hashGame(game) % uint64(numPartitions)
			partitions[idx] = append(partitions[idx], game)
			total++
			if downsample > 0 && total >= downsample {
				return partitions, nil
			}
		}
	}
	return partitions, nil
}

// processGame extracts one feature vector per position reached along a
// game's mainline, each labeled with the game's result.
func processGame(game *chess.Game) ([][]float64, []int) {
	label := 0
	if game.Outcome() == chess.WhiteWon {
		label = 1
	}

	positions := game.Positions()
	if len(positions) < 2 {
		return nil, nil
	}

	inputs := make([][]float64, 0, len(positions)-1)
	labels := make([]int, 0, len(positions)-1)
	// Skip the starting position: it precedes the first move.
	for _, pos := range positions[1:] {
		board := dragon.ParseFen(pos.String())
		inputs = append(inputs, feature.Vector(&board))
		labels = append(labels, label)
	}
	return inputs, labels
}

// BuildBatch turns one partition of games into a shuffled mini-batch.
func (p *Pipeline) BuildBatch(games []*chess.Game) (*Batch, error) {
	var inputs [][]float64
	var labels []int

	for _, game := range games {
		gameInputs, gameLabels := processGame(game)
		inputs = append(inputs, gameInputs...)
		labels = append(labels, gameLabels...)
	}

	p.rng.Shuffle(len(inputs), func(i, j int) {
		inputs[i], inputs[j] = inputs[j], inputs[i]
		labels[i], labels[j] = labels[j], labels[i]
	})

	return &Batch{Inputs: inputs, Labels: labels}, nil
}

// Run partitions the PGN data, fits the classifier partition by
// partition and saves the artifact after every partial fit, so an
// interrupted run still leaves the latest fitted model on disk. The run
// is recorded in storage when one is attached.
func (p *Pipeline) Run(numPartitions, downsample int, modelPath string) error {
	started := time.Now()

	partitions, err := p.PartitionGames(numPartitions, downsample)
	if err != nil {
		return err
	}

	games, positions, fitted := 0, 0, 0
	for _, partition := range partitions {
		if len(partition) == 0 {
			continue
		}

		batch, err := p.BuildBatch(partition)
		if err != nil {
			return err
		}
		if len(batch.Inputs) == 0 {
			continue
		}

		if err := p.classifier.PartialFit(batch.Inputs, batch.Labels); err != nil {
			return err
		}
		if err := p.classifier.Save(modelPath); err != nil {
			return err
		}

		games += len(partition)
		positions += len(batch.Inputs)
		fitted++
	}

	if p.store != nil {
		run := &storage.TrainingRun{
			ID:         uuid.NewString(),
			StartedAt:  started,
			Duration:   time.Since(started),
			Games:      games,
			Positions:  positions,
			Partitions: fitted,
			ModelPath:  modelPath,
		}
		if err := p.store.SaveRun(run); err != nil {
			return err
		}
	}
	return nil
}
