package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
	loadSql "github.com/siherrmann/eventer/sql"
)

// EventsDBHandlerFunctions defines the interface for event database operations.
type EventsDBHandlerFunctions interface {
	UpsertPacket(ctx context.Context, packet *model.EventPacket, embedding []float32) (*model.StoredEvent, error)
	SelectEvent(ctx context.Context, packetID string) (*model.StoredEvent, error)
	SelectEvents(ctx context.Context, query model.EventQuery) ([]*model.StoredEvent, error)
	SelectEventsByType(ctx context.Context, disasterType string, limit int) ([]*model.StoredEvent, error)
	SelectEventsByLocation(ctx context.Context, location string, limit int) ([]*model.StoredEvent, error)
	SelectEventsByDateRange(ctx context.Context, from time.Time, to time.Time, limit int) ([]*model.StoredEvent, error)
	SelectSimilarEvents(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.StoredEvent, error)
	SelectSummary(ctx context.Context) (*model.EventSummary, error)
	DeleteEvent(ctx context.Context, packetID string) error
	DeleteExpiredEvents(ctx context.Context, now time.Time) (int, error)
}

// EventsDBHandler stores event packets in the disaster_events table.
type EventsDBHandler struct {
	db *helper.Database
}

// NewEventsDBHandler creates a new events database handler.
// It loads the event SQL functions and creates the table with an
// embedding column of embeddingDim dimensions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEventsDBHandler(db *helper.Database, embeddingDim int, force bool) (*EventsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	eventsDbHandler := &EventsDBHandler{
		db: db,
	}

	err := loadSql.LoadEventsSql(eventsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load events sql", err)
	}

	err = eventsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EventsDBHandler")

	return eventsDbHandler, nil
}

// CreateTable creates the 'disaster_events' table and its indexes.
// If the table already exists, it does not create it again.
func (h *EventsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_events($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing disaster_events table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table disaster_events")

	return nil
}

// ValidatePacket checks the fields every stored packet needs.
func ValidatePacket(packet *model.EventPacket) error {
	if packet == nil {
		return helper.NewError("validate packet", fmt.Errorf("packet is nil"))
	}
	if packet.PacketID == "" {
		return helper.NewError("validate packet", fmt.Errorf("missing required field: packet_id"))
	}
	if packet.PacketType == "" {
		return helper.NewError("validate packet", fmt.Errorf("missing required field: packet_type"))
	}
	if packet.Meta.DisasterType == "" {
		return helper.NewError("validate packet", fmt.Errorf("missing required field: metadata.disaster_type"))
	}
	return nil
}

// StorePacket upserts a packet without an embedding.
func (h *EventsDBHandler) StorePacket(ctx context.Context, packet *model.EventPacket) error {
	_, err := h.UpsertPacket(ctx, packet, nil)
	return err
}

// StorePacketWithEmbedding upserts a packet together with its embedding.
func (h *EventsDBHandler) StorePacketWithEmbedding(ctx context.Context, packet *model.EventPacket, embedding []float32) error {
	_, err := h.UpsertPacket(ctx, packet, embedding)
	return err
}

// UpsertPacket inserts a packet or, if its packet id already exists,
// refreshes the raw packet and the updated_at timestamp.
// A nil embedding keeps any existing embedding.
func (h *EventsDBHandler) UpsertPacket(ctx context.Context, packet *model.EventPacket, embedding []float32) (*model.StoredEvent, error) {
	if err := ValidatePacket(packet); err != nil {
		return nil, err
	}

	start := h.optionalDate(packet.PacketID, packet.StartDate())
	end := h.optionalDate(packet.PacketID, packet.EndDate())

	var vector interface{}
	if len(embedding) > 0 {
		vector = pgvector.NewVector(embedding)
	}

	retention := packet.Processing.RetentionDays
	if retention <= 0 {
		retention = model.RetentionDays
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_event($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		packet.PacketID,
		packet.PacketType,
		packet.Meta.DisasterType,
		string(packet.Event.EventType),
		start,
		end,
		nullString(packet.PrimaryLocation()),
		pq.Array(packet.Spatial.AffectedLocations),
		packet.Impact.Deaths,
		packet.Impact.Injured,
		packet.Impact.Displaced,
		packet.Impact.TotalAffected,
		string(packet.Event.Severity),
		packet.Source.URL,
		packet.Source.Domain,
		packet.Source.Title,
		packet.Meta.RelevanceScore,
		packet.Processing.Priority,
		retention,
		packet,
		vector,
	)

	stored, err := scanEvent(row, false)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return stored, nil
}

// SelectEvent returns the stored event with the given packet id.
func (h *EventsDBHandler) SelectEvent(ctx context.Context, packetID string) (*model.StoredEvent, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_event($1)`, packetID)

	stored, err := scanEvent(row, false)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return stored, nil
}

// SelectEvents returns stored events matching every set field of query,
// newest start date first.
func (h *EventsDBHandler) SelectEvents(ctx context.Context, query model.EventQuery) ([]*model.StoredEvent, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_events($1, $2, $3, $4, $5)`,
		nullString(query.DisasterType),
		nullString(query.Location),
		nullTime(query.From),
		nullTime(query.To),
		query.Limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEvents(rows, false)
}

// SelectEventsByType returns events of one disaster type.
func (h *EventsDBHandler) SelectEventsByType(ctx context.Context, disasterType string, limit int) ([]*model.StoredEvent, error) {
	return h.SelectEvents(ctx, model.EventQuery{DisasterType: disasterType, Limit: limit})
}

// SelectEventsByLocation returns events whose primary location contains
// location or whose affected locations include it.
func (h *EventsDBHandler) SelectEventsByLocation(ctx context.Context, location string, limit int) ([]*model.StoredEvent, error) {
	return h.SelectEvents(ctx, model.EventQuery{Location: location, Limit: limit})
}

// SelectEventsByDateRange returns events that start on or after from and
// end on or before to. Events without an end date are judged by their start.
func (h *EventsDBHandler) SelectEventsByDateRange(ctx context.Context, from time.Time, to time.Time, limit int) ([]*model.StoredEvent, error) {
	return h.SelectEvents(ctx, model.EventQuery{From: &from, To: &to, Limit: limit})
}

// SelectSimilarEvents returns events whose embedding has a cosine
// similarity of at least threshold, most similar first.
func (h *EventsDBHandler) SelectSimilarEvents(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.StoredEvent, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_similar_events($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEvents(rows, true)
}

// SelectSummary aggregates counts and casualties over all stored events.
func (h *EventsDBHandler) SelectSummary(ctx context.Context) (*model.EventSummary, error) {
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_event_summary()`)

	summary := &model.EventSummary{}
	err := row.Scan(
		&summary.TotalEvents,
		&summary.ByDisasterType,
		&summary.BySeverity,
		&summary.TotalDeaths,
		&summary.TotalInjured,
		&summary.TotalDisplaced,
		&summary.TotalAffected,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return summary, nil
}

// DeleteEvent removes the event with the given packet id.
func (h *EventsDBHandler) DeleteEvent(ctx context.Context, packetID string) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_event($1)`, packetID)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteExpiredEvents removes events older than their retention period
// and returns how many were deleted.
func (h *EventsDBHandler) DeleteExpiredEvents(ctx context.Context, now time.Time) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT delete_expired_events($1)`, now).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	h.db.Logger.Info("Deleted expired events", "count", deleted)

	return deleted, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner, withSimilarity bool) (*model.StoredEvent, error) {
	e := &model.StoredEvent{}
	var id int
	dest := []interface{}{
		&id,
		&e.PacketID,
		&e.PacketType,
		&e.DisasterType,
		&e.EventType,
		&e.EventStartDate,
		&e.EventEndDate,
		&e.DurationDays,
		&e.PrimaryLocation,
		pq.Array(&e.AffectedLocations),
		&e.LocationCount,
		&e.Deaths,
		&e.Injured,
		&e.Displaced,
		&e.Affected,
		&e.Severity,
		&e.SourceURL,
		&e.SourceDomain,
		&e.SourceTitle,
		&e.RelevanceScore,
		&e.Priority,
		&e.RetentionDays,
		&e.RawPacket,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
	if withSimilarity {
		dest = append(dest, &e.Similarity)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.ID = int64(id)
	if e.AffectedLocations == nil {
		e.AffectedLocations = []string{}
	}

	return e, nil
}

func scanEvents(rows *sql.Rows, withSimilarity bool) ([]*model.StoredEvent, error) {
	events := []*model.StoredEvent{}
	for rows.Next() {
		e, err := scanEvent(rows, withSimilarity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return events, nil
}

// optionalDate returns s as a DATE parameter. Unparseable dates are stored
// as NULL; the raw packet still carries the original text.
func (h *EventsDBHandler) optionalDate(packetID string, s string) interface{} {
	if s == "" {
		return nil
	}
	t, err := helper.ParseDate(s)
	if err != nil {
		h.db.Logger.Warn("Storing unparseable date as NULL", "packet_id", packetID, "date", s, "error", err)
		return nil
	}
	return helper.FormatDate(t)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return helper.FormatDate(*t)
}
