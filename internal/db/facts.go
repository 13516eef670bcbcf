package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/cortex/internal/facts"
)

// ReplaceFacts stores entries as the current snapshot, dropping the
// previous one in the same transaction.
func (d *DB) ReplaceFacts(ctx context.Context, entries []facts.Entry) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM facts`); err != nil {
		return fmt.Errorf("clearing facts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO facts
		(position, id, kind, source, source_path, title, content, full_content, tags, refs, line, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		tags, err := json.Marshal(nonNil(e.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags of %s: %w", e.ID, err)
		}
		refs, err := json.Marshal(nonNil(e.References))
		if err != nil {
			return fmt.Errorf("encoding references of %s: %w", e.ID, err)
		}
		meta := []byte("{}")
		if len(e.Meta) > 0 {
			if meta, err = json.Marshal(e.Meta); err != nil {
				return fmt.Errorf("encoding meta of %s: %w", e.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, i, e.ID, string(e.Kind), e.Source, e.SourcePath, e.Title, e.Content,
			e.FullContent, string(tags), string(refs), e.Line, string(meta)); err != nil {
			return fmt.Errorf("inserting %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Facts returns the stored snapshot in its original order. Embeddings are
// not stored.
func (d *DB) Facts(ctx context.Context) ([]facts.Entry, error) {
	rows, err := d.QueryContext(ctx, `SELECT id, kind, source, source_path, title, content, full_content, tags, refs, line, meta
		FROM facts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	out := []facts.Entry{}
	for rows.Next() {
		var (
			e                facts.Entry
			kind             string
			tags, refs, meta string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Source, &e.SourcePath, &e.Title, &e.Content, &e.FullContent, &tags, &refs, &e.Line, &meta); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		e.Kind = facts.Kind(kind)
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(refs), &e.References); err != nil {
			return nil, fmt.Errorf("decoding references of %s: %w", e.ID, err)
		}
		if meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
				return nil, fmt.Errorf("decoding meta of %s: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// KindCount is the number of facts of one kind.
type KindCount struct {
	Kind  facts.Kind
	Count int
}

// CountByKind returns fact counts per kind, ordered by kind.
func (d *DB) CountByKind(ctx context.Context) ([]KindCount, error) {
	rows, err := d.QueryContext(ctx, `SELECT kind, COUNT(*) FROM facts GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("counting facts: %w", err)
	}
	defer rows.Close()

	var out []KindCount
	for rows.Next() {
		var kc KindCount
		var kind string
		if err := rows.Scan(&kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		kc.Kind = facts.Kind(kind)
		out = append(out, kc)
	}
	return out, rows.Err()
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
