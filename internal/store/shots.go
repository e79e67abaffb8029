package store

import (
	"database/sql"
	"fmt"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// TakeType classifies a take row
type TakeType string

const (
	TakeBaseImage     TakeType = "base_image"
	TakeFinalVideo    TakeType = "final_video"
	TakeVideoWorkflow TakeType = "video_workflow"
	TakeAsset         TakeType = "asset"
)

// Family returns the sequence family a take type numbers within. A final
// video and its workflow thumbnail share one sequence counter.
func (t TakeType) Family() string {
	switch t {
	case TakeFinalVideo, TakeVideoWorkflow:
		return "video"
	default:
		return string(t)
	}
}

// Shot is one row of the shots table
type Shot struct {
	ID                int64
	OrderNumber       int
	ShotName          string
	Section           string
	Description       string
	ImagePrompt       string
	ColourSchemeImage string
	TimeOfDay         string
	Location          string
	Country           string
	Year              string
	VideoPrompt       string
	CreatedDate       string
}

// Take is one row of the takes table. FilePath is project-root-relative
// with forward slashes.
type Take struct {
	TakeID         string
	ShotID         int64
	TakeType       TakeType
	FilePath       string
	SequenceNumber int
	Starred        bool
	CreatedDate    string
}

// Asset is one row of the assets table
type Asset struct {
	IDKey       string
	AssetName   string
	AssetType   string
	FilePath    string
	Starred     bool
	CreatedDate string
}

// CommitShot inserts one shot with all its takes in a single transaction.
// The shot id is explicit (assigned by the remapper, not by SQLite). A
// take-id collision aborts the transaction rather than overwriting the
// existing row; earlier committed shots are unaffected.
func (s *Store) CommitShot(shot *Shot, takes []Take) error {
	err := s.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO shots (shot_id, order_number, shot_name, section, description,
				image_prompt, colour_scheme_image, time_of_day, location, country,
				year, video_prompt, created_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			shot.ID, shot.OrderNumber, shot.ShotName, shot.Section, shot.Description,
			shot.ImagePrompt, shot.ColourSchemeImage, shot.TimeOfDay, shot.Location,
			shot.Country, shot.Year, shot.VideoPrompt, shot.CreatedDate)
		if err != nil {
			return fmt.Errorf("insert shot %q: %w", shot.ShotName, err)
		}

		for i := range takes {
			if err := insertTake(tx, &takes[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: shot %q (id %d): %v", util.ErrDatabaseMigration, shot.ShotName, shot.ID, err)
	}
	return nil
}

func insertTake(tx *sql.Tx, take *Take) error {
	var existing int
	err := tx.QueryRow("SELECT COUNT(*) FROM takes WHERE take_id = ?", take.TakeID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("check take id %s: %w", take.TakeID, err)
	}
	if existing > 0 {
		return fmt.Errorf("take id collision: %s already exists", take.TakeID)
	}

	_, err = tx.Exec(`
		INSERT INTO takes (take_id, shot_id, take_type, file_path, sequence_number, starred, created_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		take.TakeID, take.ShotID, string(take.TakeType), take.FilePath,
		take.SequenceNumber, boolToInt(take.Starred), take.CreatedDate)
	if err != nil {
		return fmt.Errorf("insert take %s: %w", take.TakeID, err)
	}
	return nil
}

// AddTake inserts a single take outside a shot commit, e.g. a
// regenerated thumbnail for an already-committed video take
func (s *Store) AddTake(take *Take) error {
	err := s.Transaction(func(tx *sql.Tx) error {
		return insertTake(tx, take)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrDatabaseMigration, err)
	}
	return nil
}

// InsertAsset inserts one asset row, rejecting id collisions
func (s *Store) InsertAsset(asset *Asset) error {
	err := s.Transaction(func(tx *sql.Tx) error {
		var existing int
		err := tx.QueryRow("SELECT COUNT(*) FROM assets WHERE id_key = ?", asset.IDKey).Scan(&existing)
		if err != nil {
			return fmt.Errorf("check asset id %s: %w", asset.IDKey, err)
		}
		if existing > 0 {
			return fmt.Errorf("asset id collision: %s already exists", asset.IDKey)
		}

		_, err = tx.Exec(`
			INSERT INTO assets (id_key, asset_name, asset_type, file_path, starred, created_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			asset.IDKey, asset.AssetName, asset.AssetType, asset.FilePath,
			boolToInt(asset.Starred), asset.CreatedDate)
		if err != nil {
			return fmt.Errorf("insert asset %s: %w", asset.AssetName, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: asset %q: %v", util.ErrDatabaseMigration, asset.AssetName, err)
	}
	return nil
}

// AssetExistsByPath reports whether an asset row already records the
// given project-relative file path
func (s *Store) AssetExistsByPath(filePath string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM assets WHERE file_path = ?", filePath).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check asset path %s: %w", filePath, err)
	}
	return count > 0, nil
}

// AllShots returns every shot ordered by shot_id
func (s *Store) AllShots() ([]Shot, error) {
	rows, err := s.db.Query(`
		SELECT shot_id, order_number, shot_name,
			COALESCE(section,''), COALESCE(description,''), COALESCE(image_prompt,''),
			COALESCE(colour_scheme_image,''), COALESCE(time_of_day,''), COALESCE(location,''),
			COALESCE(country,''), COALESCE(year,''), COALESCE(video_prompt,''),
			COALESCE(created_date,'')
		FROM shots ORDER BY shot_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shots: %w", err)
	}
	defer rows.Close()

	var shots []Shot
	for rows.Next() {
		var sh Shot
		if err := rows.Scan(&sh.ID, &sh.OrderNumber, &sh.ShotName,
			&sh.Section, &sh.Description, &sh.ImagePrompt,
			&sh.ColourSchemeImage, &sh.TimeOfDay, &sh.Location,
			&sh.Country, &sh.Year, &sh.VideoPrompt, &sh.CreatedDate); err != nil {
			return nil, err
		}
		shots = append(shots, sh)
	}
	return shots, rows.Err()
}

// AllTakes returns every take ordered by shot, type, then sequence
func (s *Store) AllTakes() ([]Take, error) {
	rows, err := s.db.Query(`
		SELECT take_id, shot_id, take_type, file_path,
			COALESCE(sequence_number, 1), COALESCE(starred, 0), COALESCE(created_date,'')
		FROM takes ORDER BY shot_id, take_type, sequence_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query takes: %w", err)
	}
	defer rows.Close()

	var takes []Take
	for rows.Next() {
		var t Take
		var taketype string
		var starred int
		if err := rows.Scan(&t.TakeID, &t.ShotID, &taketype, &t.FilePath,
			&t.SequenceNumber, &starred, &t.CreatedDate); err != nil {
			return nil, err
		}
		t.TakeType = TakeType(taketype)
		t.Starred = starred != 0
		takes = append(takes, t)
	}
	return takes, rows.Err()
}

// AllAssets returns every asset ordered by type then name
func (s *Store) AllAssets() ([]Asset, error) {
	rows, err := s.db.Query(`
		SELECT id_key, asset_name, asset_type, file_path,
			COALESCE(starred, 0), COALESCE(created_date,'')
		FROM assets ORDER BY asset_type, asset_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		var starred int
		if err := rows.Scan(&a.IDKey, &a.AssetName, &a.AssetType, &a.FilePath,
			&starred, &a.CreatedDate); err != nil {
			return nil, err
		}
		a.Starred = starred != 0
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// OrphanedTakes returns takes whose shot_id matches no shot row
func (s *Store) OrphanedTakes() ([]Take, error) {
	rows, err := s.db.Query(`
		SELECT t.take_id, t.shot_id, t.take_type, t.file_path,
			COALESCE(t.sequence_number, 1), COALESCE(t.starred, 0), COALESCE(t.created_date,'')
		FROM takes t LEFT JOIN shots s ON t.shot_id = s.shot_id
		WHERE s.shot_id IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphaned takes: %w", err)
	}
	defer rows.Close()

	var takes []Take
	for rows.Next() {
		var t Take
		var taketype string
		var starred int
		if err := rows.Scan(&t.TakeID, &t.ShotID, &taketype, &t.FilePath,
			&t.SequenceNumber, &starred, &t.CreatedDate); err != nil {
			return nil, err
		}
		t.TakeType = TakeType(taketype)
		t.Starred = starred != 0
		takes = append(takes, t)
	}
	return takes, rows.Err()
}

// DuplicateShotNames returns shot names appearing more than once
func (s *Store) DuplicateShotNames() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT shot_name FROM shots
		GROUP BY shot_name HAVING COUNT(*) > 1 ORDER BY shot_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
