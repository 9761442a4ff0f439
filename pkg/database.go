package cusum

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// RunCatalog records analysis runs and per-event summaries in a
// shared MySQL database so repeated runs over the same acquisitions
// can be compared.
type RunCatalog struct {
	db *sqlx.DB
}

func NewRunCatalog(db *sqlx.DB) *RunCatalog {
	return &RunCatalog{db: db}
}

const runsSchema = `CREATE TABLE IF NOT EXISTS AnalysisRuns (
	RunID INT AUTO_INCREMENT PRIMARY KEY,
	DataFile VARCHAR(1024) NOT NULL,
	SampleRate DOUBLE NOT NULL,
	ReadLength BIGINT NOT NULL,
	Baseline DOUBLE NOT NULL,
	BaselineStdev DOUBLE NOT NULL,
	Threshold DOUBLE NOT NULL,
	Created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

const eventsSchema = `CREATE TABLE IF NOT EXISTS Events (
	RunID INT NOT NULL,
	EventNumber BIGINT NOT NULL,
	Start BIGINT NOT NULL,
	Finish BIGINT NOT NULL,
	Length BIGINT NOT NULL,
	Class INT NOT NULL,
	Area DOUBLE NOT NULL,
	AvgBlockage DOUBLE NOT NULL,
	MaxBlockage DOUBLE NOT NULL,
	NumLevels INT NOT NULL,
	Residual DOUBLE NOT NULL,
	PRIMARY KEY (RunID, EventNumber)
)`

// EnsureSchema creates the catalog tables when they do not exist yet.
func (c *RunCatalog) EnsureSchema() error {
	if _, err := c.db.Exec(runsSchema); err != nil {
		return fmt.Errorf("error creating runs table: %w", err)
	}
	if _, err := c.db.Exec(eventsSchema); err != nil {
		return fmt.Errorf("error creating events table: %w", err)
	}
	return nil
}

type runEntry struct {
	DataFile      string  `db:"DataFile"`
	SampleRate    float64 `db:"SampleRate"`
	ReadLength    int64   `db:"ReadLength"`
	Baseline      float64 `db:"Baseline"`
	BaselineStdev float64 `db:"BaselineStdev"`
	Threshold     float64 `db:"Threshold"`
}

type eventEntry struct {
	RunID       int64   `db:"RunID"`
	EventNumber int64   `db:"EventNumber"`
	Start       int64   `db:"Start"`
	Finish      int64   `db:"Finish"`
	Length      int64   `db:"Length"`
	Class       int     `db:"Class"`
	Area        float64 `db:"Area"`
	AvgBlockage float64 `db:"AvgBlockage"`
	MaxBlockage float64 `db:"MaxBlockage"`
	NumLevels   int     `db:"NumLevels"`
	Residual    float64 `db:"Residual"`
}

// InsertRun records one analysis run and returns its catalog ID.
func (c *RunCatalog) InsertRun(datafile string, baseline *Baseline, threshold float64) (int64, error) {
	entry := runEntry{
		DataFile:      datafile,
		SampleRate:    configuration.SamplingFreq,
		ReadLength:    configuration.ReadLength,
		Baseline:      baseline.Mean,
		BaselineStdev: baseline.Stdev,
		Threshold:     threshold,
	}
	result, err := c.db.NamedExec(`INSERT INTO AnalysisRuns
		(DataFile, SampleRate, ReadLength, Baseline, BaselineStdev, Threshold)
		VALUES (:DataFile, :SampleRate, :ReadLength, :Baseline, :BaselineStdev, :Threshold)`, entry)
	if err != nil {
		return 0, fmt.Errorf("error inserting run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading run id: %w", err)
	}
	if configuration.Verbosity > 0 && logger != nil {
		message := fmt.Sprintf("Catalogued run %d for %s", runID, datafile)
		logger.Info(message, "database")
	}
	return runID, nil
}

// InsertEvents records the per-event summary rows of one run.
func (c *RunCatalog) InsertEvents(runID int64, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]eventEntry, len(events))
	for i, event := range events {
		entries[i] = eventEntry{
			RunID:       runID,
			EventNumber: event.Index,
			Start:       event.Start,
			Finish:      event.Finish,
			Length:      event.Length,
			Class:       int(event.Type),
			Area:        event.Area,
			AvgBlockage: event.AverageBlockage,
			MaxBlockage: event.MaxBlockage,
			NumLevels:   event.NumLevels,
			Residual:    event.Residual,
		}
	}
	_, err := c.db.NamedExec(`INSERT INTO Events
		(RunID, EventNumber, Start, Finish, Length, Class, Area, AvgBlockage, MaxBlockage, NumLevels, Residual)
		VALUES (:RunID, :EventNumber, :Start, :Finish, :Length, :Class, :Area, :AvgBlockage, :MaxBlockage, :NumLevels, :Residual)`, entries)
	if err != nil {
		return fmt.Errorf("error inserting events: %w", err)
	}
	return nil
}
