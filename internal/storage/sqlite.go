//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "surfaceeval.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when an evaluation or run does not exist.
var ErrNotFound = errors.New("not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Evaluation is one scored batch of runs.
type Evaluation struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"index:idx_eval_name"`
	Device    string `gorm:"index:idx_eval_kind,priority:1"`
	Signal    string `gorm:"index:idx_eval_kind,priority:2"`
	BPM       float64
	NumBeats  int
	Pattern   string // comma-separated levels
	NumRuns   int
	Complete  bool
	MeanError float64
	StdDev    float64
	MinError  float64
	MaxError  float64
	CreatedAt time.Time
	Runs      []RunScore `gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE"`
}

// RunScore is the outcome of one run: either a score or a failure message.
type RunScore struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	EvaluationID string `gorm:"type:varchar(36);uniqueIndex:idx_run,priority:1"`
	RunIndex     int    `gorm:"uniqueIndex:idx_run,priority:2"`
	Path         string
	Value        float64
	Failure      string
}

// SeriesPoint is one observed sample of a run with its expected counterpart.
type SeriesPoint struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	EvaluationID string `gorm:"type:varchar(36);index:idx_series,priority:1"`
	RunIndex     int    `gorm:"index:idx_series,priority:2"`
	Seq          int
	TimestampMs  float64
	Observed     float64
	Expected     float64
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SURFACEEVAL_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// one writer; the evaluation pipeline is sequential anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Evaluation{}, &RunScore{}, &SeriesPoint{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveEvaluation stores eval with its run scores and series in one transaction.
// An empty eval.ID gets a fresh UUID. The stored ID is returned.
func (c *DBClient) SaveEvaluation(eval *Evaluation, series []SeriesPoint) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	for i := range eval.Runs {
		eval.Runs[i].EvaluationID = eval.ID
	}
	for i := range series {
		series[i].EvaluationID = eval.ID
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(eval).Error; err != nil {
			return fmt.Errorf("creating evaluation: %w", err)
		}
		if len(series) > 0 {
			if err := tx.CreateInBatches(series, 500).Error; err != nil {
				return fmt.Errorf("batch insert series: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return eval.ID, nil
}

// GetEvaluation loads an evaluation and its runs ordered by run index.
func (c *DBClient) GetEvaluation(id string) (*Evaluation, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var eval Evaluation
	err := c.DB.Preload("Runs", func(db *gorm.DB) *gorm.DB {
		return db.Order("run_index ASC")
	}).Where("id = ?", id).First(&eval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying evaluation: %w", err)
	}
	return &eval, nil
}

// ListEvaluations returns all evaluations, newest first, without runs.
func (c *DBClient) ListEvaluations() ([]Evaluation, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var evals []Evaluation
	if err := c.DB.Order("created_at DESC").Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	return evals, nil
}

// GetSeries returns the stored series of one run in sample order.
func (c *DBClient) GetSeries(evaluationID string, runIndex int) ([]SeriesPoint, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var run RunScore
	err := c.DB.Where("evaluation_id = ? AND run_index = ?", evaluationID, runIndex).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("run %d of evaluation %s: %w", runIndex, evaluationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}

	var points []SeriesPoint
	if err := c.DB.Where("evaluation_id = ? AND run_index = ?", evaluationID, runIndex).
		Order("seq ASC").Find(&points).Error; err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	return points, nil
}

// DeleteEvaluation removes an evaluation, its runs and its series.
func (c *DBClient) DeleteEvaluation(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("evaluation_id = ?", id).Delete(&SeriesPoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("evaluation_id = ?", id).Delete(&RunScore{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Evaluation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
