package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed events.sql
var eventsSQL string

//go:embed statistics.sql
var statisticsSQL string

// Function lists for verification
var EventsFunctions = []string{
	"init_events",
	"upsert_event",
	"select_event",
	"select_events",
	"select_similar_events",
	"delete_event",
	"delete_expired_events",
	"select_event_summary",
}

var StatisticsFunctions = []string{
	"init_statistics",
	"insert_statistics",
	"select_statistics",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEventsSql loads event-related SQL functions
func LoadEventsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, "events", eventsSQL, EventsFunctions, force)
}

// LoadStatisticsSql loads batch statistics SQL functions
func LoadStatisticsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, "statistics", statisticsSQL, StatisticsFunctions, force)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadEventsSql(db, force); err != nil {
		return err
	}

	if err := LoadStatisticsSql(db, force); err != nil {
		return err
	}

	return nil
}

func loadFunctions(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
