package migrate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/remap"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// CSVSource imports a tabular project: a shot list CSV plus
// image_storyboard/<shot>/ and video_storyboard/<shot>/ media folders.
type CSVSource struct {
	root    string
	csvPath string
}

// OpenCSV validates an import folder and locates its shot list
func OpenCSV(root string) (*CSVSource, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: import folder %s is not a directory", util.ErrConfiguration, root)
	}

	csvPath, err := findShotList(root)
	if err != nil {
		return nil, err
	}
	return &CSVSource{root: root, csvPath: csvPath}, nil
}

// findShotList locates exactly one .csv in the import folder root
func findShotList(root string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.csv"))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no shot list CSV in %s", util.ErrConfiguration, root)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: multiple CSV files in %s, expected one: %v", util.ErrConfiguration, root, matches)
	}
}

// Describe returns the source description for logs
func (c *CSVSource) Describe() string {
	return fmt.Sprintf("CSV import from %s", c.root)
}

// Shots parses the shot list and attaches storyboard media per shot.
// order_number and shot_name headers are required; other columns map to
// shot attributes by name and unknown columns are ignored.
func (c *CSVSource) Shots() ([]ShotData, error) {
	file, err := os.Open(c.csvPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open shot list: %v", util.ErrConfiguration, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed shot list %s: %v", util.ErrConfiguration, c.csvPath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: shot list %s is empty", util.ErrConfiguration, c.csvPath)
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[name] = i
	}
	for _, required := range []string{"order_number", "shot_name"} {
		if _, ok := header[required]; !ok {
			return nil, fmt.Errorf("%w: shot list missing required column %q", util.ErrConfiguration, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := header[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	shots := make([]ShotData, 0, len(records)-1)
	for _, record := range records[1:] {
		name := field(record, "shot_name")
		order, hasOrder := parseOrder(field(record, "order_number"))

		files, err := c.storyboardFiles(name)
		if err != nil {
			return nil, err
		}

		shots = append(shots, ShotData{
			Legacy: remap.Legacy{Name: name, Order: order, HasOrder: hasOrder},
			Attrs: ShotAttrs{
				Section:           field(record, "section"),
				Description:       field(record, "description"),
				ImagePrompt:       field(record, "image_prompt"),
				ColourSchemeImage: field(record, "colour_scheme_image"),
				TimeOfDay:         field(record, "time_of_day"),
				Location:          field(record, "location"),
				Country:           field(record, "country"),
				Year:              field(record, "year"),
				VideoPrompt:       field(record, "video_prompt"),
				CreatedDate:       field(record, "created_date"),
			},
			Files: files,
		})
	}
	return shots, nil
}

// storyboardFiles merges a shot's image and video storyboard folders
func (c *CSVSource) storyboardFiles(shotName string) ([]media.SourceFile, error) {
	var files []media.SourceFile
	for _, board := range []string{"image_storyboard", "video_storyboard"} {
		found, err := scanShotFolder(filepath.Join(c.root, board, shotName))
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// Assets scans optional asset category folders in the import root
func (c *CSVSource) Assets() ([]AssetData, error) {
	return scanAssetDirs(c.root, nil)
}

// Meta returns nothing: a tabular import has no legacy meta to carry
func (c *CSVSource) Meta() (map[string]string, error) {
	return nil, nil
}
