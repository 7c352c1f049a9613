package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Journal file names inside DataDir.
const (
	PropertiesJournal = "properties.jsonl"
	VersionsJournal   = "versions.jsonl"
)

type propertyRecord struct {
	Name      string         `json:"name"`
	Kind      types.KindName `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
}

// versionRecord is one line of versions.jsonl. Value holds the kind's text
// form and is null when absent.
type versionRecord struct {
	ID        int64          `json:"id"`
	Property  string         `json:"property"`
	Kind      types.KindName `json:"kind"`
	SubjectID uuid.UUID      `json:"subject_id"`
	AddedAt   time.Time      `json:"added_at"`
	Value     *string        `json:"value"`
}

func newVersionRecord(prop *types.Property, c codec.Codec, row store.Row, absent bool) versionRecord {
	rec := versionRecord{
		ID:        row.ID,
		Property:  prop.Name,
		Kind:      prop.Kind,
		SubjectID: row.SubjectID,
		AddedAt:   row.AddedAt,
	}
	if !absent {
		s := c.Format(row.Value)
		rec.Value = &s
	}
	return rec
}

func writePropertiesJournal(dataDir string, props []*types.Property) error {
	records := make([]json.RawMessage, 0, len(props))
	for _, p := range props {
		data, err := json.Marshal(propertyRecord{Name: p.Name, Kind: p.Kind, CreatedAt: p.CreatedAt})
		if err != nil {
			return err
		}
		records = append(records, data)
	}
	return writeJSONL(filepath.Join(dataDir, PropertiesJournal), records)
}

// appendVersionJournal returns the journal size before the append.
func appendVersionJournal(dataDir string, rec versionRecord) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	return appendJSONL(filepath.Join(dataDir, VersionsJournal), data)
}

// unappendVersionJournal drops everything after offset, taking back a line
// whose transaction did not commit.
func unappendVersionJournal(dataDir string, offset int64) error {
	return truncateJSONL(filepath.Join(dataDir, VersionsJournal), offset)
}

// replayJournal loads the JSONL files into an empty database in one
// transaction. A database that already holds properties is left alone.
// Records that fail to decode are skipped, like malformed lines. When two
// records share an ID the later one wins: an ID is only reused after the
// earlier record's transaction failed to commit.
func replayJournal(db *sql.DB, dataDir string) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	props, err := readJSONL(filepath.Join(dataDir, PropertiesJournal))
	if err != nil {
		return err
	}
	versions, err := readJSONL(filepath.Join(dataDir, VersionsJournal))
	if err != nil {
		return err
	}
	if len(props) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning replay transaction: %w", err)
	}
	defer tx.Rollback()

	kinds := map[string]types.KindName{}
	for _, raw := range props {
		var rec propertyRecord
		if err := json.Unmarshal(raw, &rec); err != nil || !rec.Kind.Valid() || types.ValidatePropertyName(rec.Name) != nil {
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO properties (name, kind, created_at) VALUES (?, ?, ?)`,
			rec.Name, string(rec.Kind), rec.CreatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("replaying property %q: %w", rec.Name, err)
		}
		kinds[rec.Name] = rec.Kind
	}

	for _, raw := range versions {
		var rec versionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		kind, ok := kinds[rec.Property]
		if !ok || kind != rec.Kind {
			continue
		}
		c, err := codec.For(kind)
		if err != nil {
			continue
		}
		var encoded any
		absent := rec.Value == nil
		if !absent {
			value, err := c.Parse(*rec.Value)
			if err != nil {
				continue
			}
			if encoded, err = c.Encode(value); err != nil {
				continue
			}
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO versions (id, property, subject_id, added_at, absent, value) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Property, rec.SubjectID.String(), rec.AddedAt.UnixNano(), absent, storable(encoded),
		); err != nil {
			return fmt.Errorf("replaying version %d: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}
