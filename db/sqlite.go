// Package db stores recorded fuzzing observations and replay evaluations in
// SQLite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rejectlearn/ml"
)

// Observation is one executed request and the status code it produced.
type Observation struct {
	ID          int64
	CandidateID string
	Request     ml.Request
	StatusCode  int
	ObservedAt  time.Time
}

// Evaluation is the outcome of replaying a journal through one model family.
type Evaluation struct {
	ModelName   string    `json:"model_name"`
	Endpoint    string    `json:"endpoint"`
	Samples     int       `json:"samples"`
	Accuracy    float64   `json:"accuracy"`
	Precision   float64   `json:"precision"`
	Recall      float64   `json:"recall"`
	F1          float64   `json:"f1"`
	MCC         float64   `json:"mcc"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Journal is an append-only log of observations.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS observations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        candidate_id TEXT NOT NULL DEFAULT '',
        method TEXT NOT NULL,
        path TEXT NOT NULL,
        params TEXT NOT NULL,
        status_code INTEGER NOT NULL,
        observed_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_observations_endpoint ON observations(method, path);
    CREATE TABLE IF NOT EXISTS evaluations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(20) NOT NULL,
        endpoint TEXT NOT NULL,
        samples INTEGER NOT NULL,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        mcc REAL,
        evaluated_at DATETIME NOT NULL
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Journal{db: database}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores obs and returns its ID. A zero ObservedAt is set to now.
func (j *Journal) Append(obs Observation) (int64, error) {
	params, err := encodeParams(obs.Request.Params)
	if err != nil {
		return 0, err
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}
	result, err := j.db.Exec(`
        INSERT INTO observations (candidate_id, method, path, params, status_code, observed_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		obs.CandidateID, obs.Request.Endpoint.Method, obs.Request.Endpoint.Path, params, obs.StatusCode, obs.ObservedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Observations returns every observation in insertion order.
func (j *Journal) Observations() ([]Observation, error) {
	rows, err := j.db.Query(`
        SELECT id, candidate_id, method, path, params, status_code, observed_at
        FROM observations
        ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]Observation, 0)
	for rows.Next() {
		var obs Observation
		var params string
		if err := rows.Scan(&obs.ID, &obs.CandidateID, &obs.Request.Endpoint.Method, &obs.Request.Endpoint.Path,
			&params, &obs.StatusCode, &obs.ObservedAt); err != nil {
			return nil, err
		}
		obs.Request.Params, err = decodeParams(params)
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", obs.ID, err)
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// SaveEvaluation records a replay result.
func (j *Journal) SaveEvaluation(e Evaluation) error {
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	_, err := j.db.Exec(`
        INSERT INTO evaluations (model_name, endpoint, samples, accuracy, precision, recall, f1, mcc, evaluated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ModelName, e.Endpoint, e.Samples, e.Accuracy, e.Precision, e.Recall, e.F1, e.MCC, e.EvaluatedAt)
	return err
}

// Evaluations returns stored evaluations, newest first.
func (j *Journal) Evaluations() ([]Evaluation, error) {
	rows, err := j.db.Query(`
        SELECT model_name, endpoint, samples, accuracy, precision, recall, f1, mcc, evaluated_at
        FROM evaluations
        ORDER BY evaluated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := make([]Evaluation, 0)
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.ModelName, &e.Endpoint, &e.Samples, &e.Accuracy, &e.Precision, &e.Recall, &e.F1, &e.MCC, &e.EvaluatedAt); err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}
