package packet

import (
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/eventer/helper"
	"github.com/siherrmann/eventer/model"
)

type assembler struct {
	clock func() time.Time
	newID func() string
}

// Option configures Assemble.
type Option func(*assembler)

func WithClock(clock func() time.Time) Option {
	return func(a *assembler) { a.clock = clock }
}

// WithIDGenerator replaces the uuid packet ids.
func WithIDGenerator(newID func() string) Option {
	return func(a *assembler) { a.newID = newID }
}

// Assemble converts a surviving event into its packet. It accepts any event and never fails.
// A relative start date is replaced by the publish date, or today if that is unknown,
// and the packet is flagged for time normalization.
func Assemble(event model.DiscreteEvent, meta model.SourceMetadata, opts ...Option) model.EventPacket {
	a := &assembler{clock: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(a)
	}
	now := a.clock().UTC()

	start := event.StartDate
	relative := model.IsRelativeDate(start)
	if relative {
		start = resolveRelative(meta.PublishDate, now)
	}

	locations := append([]string{}, event.Locations...)
	contentIDs := append([]string{}, event.SourceUnitIDs...)

	dates := []string{}
	if start != "" {
		dates = append(dates, start)
	}
	if event.EndDate != "" && event.EndDate != start {
		dates = append(dates, event.EndDate)
	}

	disasterType := meta.DisasterType
	if disasterType == "" {
		disasterType = string(event.Type)
	}

	severity := event.Severity
	if severity == "" {
		severity = model.ComputeSeverity(event.Casualties.Total(), len(locations))
	}
	priority := model.PriorityNormal
	if severity == model.LevelHigh {
		priority = model.PriorityHigh
	}
	confidence := model.LevelMedium
	if start != "" && event.PrimaryLocation != "" {
		confidence = model.LevelHigh
	}

	return model.EventPacket{
		PacketID:      a.newID(),
		PacketType:    model.PacketType,
		SchemaVersion: model.PacketSchemaVersion,
		Timestamp:     now,
		Event: model.PacketEvent{
			EventID:     event.ID,
			EventType:   event.Type,
			EventName:   event.Description,
			Description: event.Description,
			Severity:    severity,
			Magnitude:   event.Magnitude,
		},
		Temporal: model.PacketTemporal{
			StartDate:         optional(start),
			EndDate:           optional(event.EndDate),
			AllDatesMentioned: dates,
			IsOngoing:         start != "" && event.EndDate == "",
		},
		Spatial: model.PacketSpatial{
			PrimaryLocation:   optional(event.PrimaryLocation),
			AffectedLocations: locations,
			NumLocations:      len(locations),
		},
		Impact: model.PacketImpact{
			Deaths:        event.Casualties.Deaths,
			Injured:       event.Casualties.Injured,
			Displaced:     event.Casualties.Displaced,
			TotalAffected: event.Casualties.Total(),
		},
		Source: model.PacketSource{
			URL:                 meta.URL,
			Domain:              meta.Domain,
			Title:               meta.Title,
			CollectionTimestamp: now,
			ContentIDs:          contentIDs,
		},
		Meta: model.PacketMeta{
			DisasterType:     disasterType,
			RelevanceScore:   meta.RelevanceScore,
			Confidence:       confidence,
			ExtractionMethod: event.Source,
		},
		Processing: model.PacketProcessing{
			Priority:                  priority,
			RequiresNLP:               false,
			RequiresGeoCoding:         len(locations) > 0,
			RequiresTimeNormalization: relative,
			RetentionDays:             model.RetentionDays,
		},
	}
}

// AssembleAll assembles one packet per event with shared options.
func AssembleAll(events []model.DiscreteEvent, meta model.SourceMetadata, opts ...Option) []model.EventPacket {
	packets := make([]model.EventPacket, 0, len(events))
	for _, e := range events {
		packets = append(packets, Assemble(e, meta, opts...))
	}
	return packets
}

func resolveRelative(publishDate string, now time.Time) string {
	if publishDate != "" {
		if d, err := helper.NormalizeDate(publishDate); err == nil {
			return d
		}
	}
	return helper.FormatDate(now)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
