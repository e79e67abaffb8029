// Package migrate orchestrates the two migration paths: reading a legacy
// shot database or importing a tabular CSV project, both feeding the same
// remap → relocate → commit pipeline.
package migrate

import (
	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/remap"
)

// ShotData is one legacy shot with everything the pipeline needs: its
// identity input, descriptive attributes, and the media files found for
// it. Starred marks source filenames whose take was starred in the
// legacy database. MissingTakes lists filenames the legacy takes table
// records but the shot folder does not hold; a shot carrying any fails
// migration rather than silently dropping the rows.
type ShotData struct {
	Legacy       remap.Legacy
	Attrs        ShotAttrs
	Files        []media.SourceFile
	Starred      map[string]bool
	MissingTakes []string
}

// ShotAttrs are the descriptive columns carried onto the new shot row
type ShotAttrs struct {
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

// AssetData is one asset file found in the source
type AssetData struct {
	Category string // characters, locations, other
	Name     string
	AbsPath  string
	Size     int64
	Starred  bool
}

// Source abstracts where legacy shots come from
type Source interface {
	// Describe returns a human-readable source description for logs
	Describe() string
	// Shots returns every legacy shot in source order
	Shots() ([]ShotData, error)
	// Assets returns project-level asset files
	Assets() ([]AssetData, error)
	// Meta returns legacy meta rows to carry over, possibly empty
	Meta() (map[string]string, error)
}
