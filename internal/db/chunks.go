package db

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"kbbot/internal/index"
)

// DocumentHash returns the stored content hash for a source path, with ok
// false when the document has never been indexed.
func (d *DB) DocumentHash(source string) (string, bool) {
	var hash string
	err := d.sql.QueryRow("SELECT content_hash FROM documents WHERE source = ?", source).Scan(&hash)
	if err != nil {
		return "", false
	}
	return hash, true
}

// ReplaceDocument atomically swaps all chunks of a source document: the old
// rows disappear and the new ones appear in one transaction, so readers
// never observe a half-indexed document.
func (d *DB) ReplaceDocument(source, contentHash string, chunks []index.Chunk) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var docID int64
	err = tx.QueryRow("SELECT id FROM documents WHERE source = ?", source).Scan(&docID)
	if err == nil {
		if _, err := tx.Exec("DELETE FROM chunks WHERE document_id = ?", docID); err != nil {
			return fmt.Errorf("delete old chunks: %w", err)
		}
		if _, err := tx.Exec(
			"UPDATE documents SET content_hash = ?, indexed_at = ? WHERE id = ?",
			contentHash, time.Now().UTC().Format(time.RFC3339), docID); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
	} else {
		res, err := tx.Exec(
			"INSERT INTO documents (source, content_hash, indexed_at) VALUES (?, ?, ?)",
			source, contentHash, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		docID, _ = res.LastInsertId()
	}

	stmt, err := tx.Prepare(
		"INSERT INTO chunks (document_id, seq, page, section, content, token_count, embedding) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range chunks {
		if _, err := stmt.Exec(docID, i, ch.Page, ch.Section, ch.Content, ch.Tokens, encodeVector(ch.Vector)); err != nil {
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// DeleteDocument removes a source document and its chunks.
func (d *DB) DeleteDocument(source string) error {
	_, err := d.sql.Exec("DELETE FROM documents WHERE source = ?", source)
	return err
}

// AllChunks loads every chunk with its vector, ordered by document and
// position.
func (d *DB) AllChunks() ([]index.Chunk, error) {
	rows, err := d.sql.Query(`
		SELECT doc.source, c.page, c.section, c.content, c.token_count, c.embedding
		FROM chunks c JOIN documents doc ON doc.id = c.document_id
		ORDER BY doc.source, c.seq`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []index.Chunk
	for rows.Next() {
		var ch index.Chunk
		var blob []byte
		if err := rows.Scan(&ch.Source, &ch.Page, &ch.Section, &ch.Content, &ch.Tokens, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		ch.Vector = decodeVector(blob)
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Counts returns the number of indexed documents and chunks.
func (d *DB) Counts() (documents, chunks int) {
	d.sql.QueryRow("SELECT COUNT(*) FROM documents").Scan(&documents)
	d.sql.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&chunks)
	return documents, chunks
}

// encodeVector packs float32s as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) < 4 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
