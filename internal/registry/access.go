package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"aerogate/internal/models"
)

// AccessQuery narrows the access log. Zero value returns everything.
type AccessQuery struct {
	Status models.Status
	Limit  int
}

// AppendAccess writes rec to the access log and returns it with its sequence number.
func (r *Registry) AppendAccess(ctx context.Context, rec models.AccessRecord) (models.AccessRecord, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO access_log (name, passport, status, confidence, terminal, ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Name, nullable(rec.Passport), string(rec.Status), rec.Confidence, rec.Terminal, rec.Timestamp.UTC().Format(tsLayout))
	if err != nil {
		return models.AccessRecord{}, fmt.Errorf("insert access record: %w", err)
	}
	if rec.Seq, err = res.LastInsertId(); err != nil {
		return models.AccessRecord{}, err
	}
	r.log.Debug("access recorded",
		zap.Int64("seq", rec.Seq),
		zap.String("status", string(rec.Status)),
		zap.Float64("confidence", rec.Confidence))
	return rec, nil
}

// Access lists access records, newest first.
func (r *Registry) Access(ctx context.Context, q AccessQuery) ([]models.AccessRecord, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT seq, name, passport, status, confidence, terminal, ts FROM access_log`)
	if q.Status != "" {
		sb.WriteString(` WHERE status = ?`)
		args = append(args, string(q.Status))
	}
	sb.WriteString(` ORDER BY seq DESC`)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AccessRecord
	for rows.Next() {
		var (
			rec      models.AccessRecord
			passport *string
			status   string
			ts       string
		)
		if err := rows.Scan(&rec.Seq, &rec.Name, &passport, &status, &rec.Confidence, &rec.Terminal, &ts); err != nil {
			return nil, err
		}
		if passport != nil {
			rec.Passport = *passport
		}
		rec.Status = models.Status(status)
		if rec.Timestamp, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("access record %d: bad timestamp: %w", rec.Seq, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
