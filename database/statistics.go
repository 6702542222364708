package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
	loadSql "github.com/siherrmann/eventer/sql"
)

// StatisticsDBHandlerFunctions defines the interface for batch statistics operations.
type StatisticsDBHandlerFunctions interface {
	InsertStatistics(ctx context.Context, stats *model.Statistics) error
	SelectStatistics(ctx context.Context, limit int) ([]*model.Statistics, error)
	SelectLatestStatistics(ctx context.Context) (*model.Statistics, error)
}

// StatisticsDBHandler stores per-batch processing statistics.
type StatisticsDBHandler struct {
	db *helper.Database
}

// NewStatisticsDBHandler creates a new statistics database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewStatisticsDBHandler(db *helper.Database, force bool) (*StatisticsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	statisticsDbHandler := &StatisticsDBHandler{
		db: db,
	}

	err := loadSql.LoadStatisticsSql(statisticsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load statistics sql", err)
	}

	err = statisticsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized StatisticsDBHandler")

	return statisticsDbHandler, nil
}

// CreateTable creates the 'consumption_statistics' table.
func (h *StatisticsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_statistics();`)
	if err != nil {
		log.Panicf("error initializing consumption_statistics table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table consumption_statistics")

	return nil
}

// InsertStatistics stores one batch and fills in its id and timestamp.
func (h *StatisticsDBHandler) InsertStatistics(ctx context.Context, stats *model.Statistics) error {
	if stats == nil {
		return helper.NewError("validate statistics", fmt.Errorf("statistics are nil"))
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_statistics($1, $2, $3, $4, $5, $6)`,
		stats.MessagesConsumed,
		stats.MessagesStored,
		stats.MessagesFailed,
		stats.DisasterTypeBreakdown,
		stats.SeverityBreakdown,
		stats.ProcessingTimeSeconds,
	)

	var id int
	err := row.Scan(
		&id,
		&stats.MessagesConsumed,
		&stats.MessagesStored,
		&stats.MessagesFailed,
		&stats.DisasterTypeBreakdown,
		&stats.SeverityBreakdown,
		&stats.ProcessingTimeSeconds,
		&stats.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	stats.ID = int64(id)

	return nil
}

// SelectStatistics returns up to limit batches, newest first.
// A limit of zero returns all batches.
func (h *StatisticsDBHandler) SelectStatistics(ctx context.Context, limit int) ([]*model.Statistics, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_statistics($1)`, limit)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var all []*model.Statistics
	for rows.Next() {
		stats := &model.Statistics{}
		var id int
		err := rows.Scan(
			&id,
			&stats.MessagesConsumed,
			&stats.MessagesStored,
			&stats.MessagesFailed,
			&stats.DisasterTypeBreakdown,
			&stats.SeverityBreakdown,
			&stats.ProcessingTimeSeconds,
			&stats.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		stats.ID = int64(id)
		all = append(all, stats)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return all, nil
}

// SelectLatestStatistics returns the most recent batch or nil if none exist.
func (h *StatisticsDBHandler) SelectLatestStatistics(ctx context.Context) (*model.Statistics, error) {
	all, err := h.SelectStatistics(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}
