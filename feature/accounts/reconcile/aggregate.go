package reconcile

import (
	"account-audit/core/reconcile"
	"account-audit/feature/accounts/models"
	"account-audit/feature/accounts/source"

	"go.uber.org/zap"
)

// CanonicalLoad is the outcome of aggregating the archiver rows.
type CanonicalLoad struct {
	// Index holds the comparable records keyed by account id.
	Index reconcile.CanonicalIndex
	// Retained is the number of comparable records kept.
	Retained int
	// Skipped counts decoded records that are not comparable.
	Skipped int
	// Failed counts payloads that could not be decoded.
	Failed int
}

// SecondaryLoad is the outcome of aggregating the rows of one node store.
type SecondaryLoad struct {
	// Records are the comparable records, one per account id, in first-seen order.
	Records []*models.Record
	// Skipped counts decoded records that are not comparable.
	Skipped int
	// Failed counts payloads that could not be decoded.
	Failed int
}

// BuildCanonical decodes the archiver rows and keeps the comparable ones.
// A repeated id replaces the earlier record. Decode failures are logged and counted.
func BuildCanonical(rows []source.Row, logger *zap.Logger) CanonicalLoad {
	load := CanonicalLoad{Index: reconcile.CanonicalIndex{}}
	for _, rec := range decodeRows(models.OriginArchiver, rows, logger, &load.Skipped, &load.Failed) {
		load.Index[rec.ID] = rec
	}
	load.Retained = len(load.Index)
	return load
}

// BuildSecondary decodes the rows of the node called name. Records are tagged
// with name; a repeated id replaces the earlier record in place.
func BuildSecondary(name string, rows []source.Row, logger *zap.Logger) SecondaryLoad {
	var load SecondaryLoad
	seen := make(map[string]int)
	for _, rec := range decodeRows(name, rows, logger, &load.Skipped, &load.Failed) {
		if i, ok := seen[rec.ID]; ok {
			load.Records[i] = rec
			continue
		}
		seen[rec.ID] = len(load.Records)
		load.Records = append(load.Records, rec)
	}
	return load
}

// Merge appends the records of one node to idx. Existing entries are never replaced.
func (l SecondaryLoad) Merge(idx reconcile.SecondaryIndex) {
	for _, rec := range l.Records {
		idx.Append(rec.ID, rec)
	}
}

func decodeRows(origin string, rows []source.Row, logger *zap.Logger, skipped, failed *int) []*models.Record {
	out := make([]*models.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := models.Decode(row.ID, row.Payload)
		if err != nil {
			*failed++
			logger.Warn("Failed to decode account",
				zap.String("account_id", row.ID),
				zap.String("source", origin),
				zap.Error(err))
			continue
		}
		if !rec.IsComparable() {
			*skipped++
			continue
		}
		rec.Origin = origin
		out = append(out, rec)
	}
	return out
}
