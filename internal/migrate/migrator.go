package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/project"
	"github.com/mdkberry/migrating-to-aimms/internal/remap"
	"github.com/mdkberry/migrating-to-aimms/internal/report"
	"github.com/mdkberry/migrating-to-aimms/internal/schema"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// ShotResult is the outcome for one shot. A failed shot never rolls back
// shots committed before it.
type ShotResult struct {
	Identity remap.Identity
	Takes    int
	Err      error
}

// Result is the outcome of a whole migration run
type Result struct {
	Shots    []ShotResult
	Summary  report.RunSummary
	Mapping  *project.ShotNameMapping
	Failed   int
	Migrated int
}

// Migrator drives one migration run from a source into a target project
type Migrator struct {
	source    Source
	layout    *project.Layout
	schema    *schema.Schema
	collector *report.Collector
	events    *report.EventLogger
}

// New returns a migrator for the given source and target project root
func New(source Source, target string, sc *schema.Schema, collector *report.Collector, events *report.EventLogger) *Migrator {
	return &Migrator{
		source:    source,
		layout:    project.NewLayout(target),
		schema:    sc,
		collector: collector,
		events:    events,
	}
}

// Run executes the migration. Configuration and database-setup problems
// are fatal; per-shot failures are collected and the run continues with
// the next shot.
func (m *Migrator) Run() (*Result, error) {
	started := time.Now()
	util.InfoLog("Migrating %s", m.source.Describe())

	shots, err := m.source.Shots()
	if err != nil {
		return nil, err
	}
	if len(shots) == 0 {
		return nil, fmt.Errorf("%w: source has no shots", util.ErrConfiguration)
	}

	legacies := make([]remap.Legacy, len(shots))
	byName := make(map[string]*ShotData, len(shots))
	for i := range shots {
		legacies[i] = shots[i].Legacy
		byName[shots[i].Legacy.Name] = &shots[i]
	}

	identities, err := remap.Assign(legacies)
	if err != nil {
		return nil, err
	}
	table := remap.NewTable(identities)
	util.InfoLog("Assigned surrogate ids to %d shots", len(identities))

	projectName := filepath.Base(m.layout.Root)
	if err := m.layout.Scaffold(projectName); err != nil {
		return nil, err
	}

	st, err := store.Open(m.layout.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open target database: %v", util.ErrDatabaseMigration, err)
	}
	defer st.Close()

	if err := st.Initialize(m.schema); err != nil {
		return nil, fmt.Errorf("%w: cannot create target schema: %v", util.ErrDatabaseMigration, err)
	}
	if err := st.SeedMeta(); err != nil {
		return nil, fmt.Errorf("%w: cannot seed meta: %v", util.ErrDatabaseMigration, err)
	}

	legacyMeta, err := m.source.Meta()
	if err != nil {
		return nil, err
	}
	if len(legacyMeta) > 0 {
		if err := st.CarryLegacyMeta(legacyMeta); err != nil {
			return nil, fmt.Errorf("%w: cannot carry legacy meta: %v", util.ErrDatabaseMigration, err)
		}
	}

	result := &Result{}
	relocator := media.NewRelocator(m.layout.Root)

	isTTY := util.IsTerminal(os.Stderr.Fd())
	var bar *progressbar.ProgressBar
	if isTTY && !util.IsQuiet() {
		bar = progressbar.NewOptions(len(identities),
			progressbar.OptionSetDescription("Migrating shots"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	summary := report.RunSummary{
		Source:  m.source.Describe(),
		Target:  m.layout.Root,
		Started: started,
	}

	for _, identity := range identities {
		data := byName[identity.LegacyName]
		res := m.migrateShot(st, relocator, identity, data, &summary)
		result.Shots = append(result.Shots, res)
		if res.Err != nil {
			result.Failed++
			m.collector.Errorf("shot", identity.LegacyName, "migration failed: %v", res.Err)
			m.events.LogShotFailed(identity.LegacyName, identity.SurrogateID, res.Err)
		} else {
			result.Migrated++
			m.events.LogShotCommitted(identity.LegacyName, identity.SurrogateID, res.Takes)
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	if err := m.migrateAssets(st, relocator, &summary); err != nil {
		return nil, err
	}

	mapping := project.NewShotNameMapping(table.Mapping())
	if err := m.layout.WriteMappingPair(mapping); err != nil {
		return nil, err
	}
	result.Mapping = mapping

	summary.ShotsMigrated = result.Migrated
	summary.ShotsFailed = result.Failed
	summary.Finished = time.Now()
	result.Summary = summary

	if err := m.writeMigrationLog(&summary); err != nil {
		util.WarnLog("Could not write migration log: %v", err)
	}

	if result.Failed > 0 {
		util.WarnLog("Migrated %d shots, %d failed", result.Migrated, result.Failed)
	} else {
		util.SuccessLog("Migrated %d shots, %d takes, %d assets",
			result.Migrated, summary.TakesCreated, summary.AssetsCreated)
	}
	return result, nil
}

// migrateShot relocates one shot's media and commits its rows in a
// single transaction. Media goes first so committed take rows always
// reference files that exist.
func (m *Migrator) migrateShot(st *store.Store, relocator *media.Relocator, identity remap.Identity, data *ShotData, summary *report.RunSummary) ShotResult {
	res := ShotResult{Identity: identity}

	if len(data.MissingTakes) > 0 {
		res.Err = fmt.Errorf("%w: legacy take file(s) missing from shot folder: %s",
			util.ErrMediaMigration, strings.Join(data.MissingTakes, ", "))
		return res
	}

	plan, err := media.BuildShotPlan(identity.SurrogateID, data.Files)
	if err != nil {
		res.Err = err
		return res
	}

	copied, err := relocator.RelocateShot(plan)
	for _, c := range copied {
		if c.Outcome == media.Copied {
			summary.FilesCopied++
			summary.BytesCopied += c.Bytes
		}
		m.events.LogMediaCopy(c.Item.SrcPath, c.Item.DestRel, c.Bytes, c.Outcome == media.Satisfied)
		if util.IsZeroSize(c.Item.SrcPath) {
			m.collector.Warnf("media", c.Item.DestRel, "zero-byte placeholder copied")
		}
	}
	if err != nil {
		res.Err = err
		return res
	}

	created := data.Attrs.CreatedDate
	if created == "" {
		created = project.UTCTimestamp()
	}

	shot := &store.Shot{
		ID:                identity.SurrogateID,
		OrderNumber:       identity.Order,
		ShotName:          identity.LegacyName,
		Section:           data.Attrs.Section,
		Description:       data.Attrs.Description,
		ImagePrompt:       data.Attrs.ImagePrompt,
		ColourSchemeImage: data.Attrs.ColourSchemeImage,
		TimeOfDay:         data.Attrs.TimeOfDay,
		Location:          data.Attrs.Location,
		Country:           data.Attrs.Country,
		Year:              data.Attrs.Year,
		VideoPrompt:       data.Attrs.VideoPrompt,
		CreatedDate:       created,
	}

	takes := make([]store.Take, 0, len(plan.Items))
	for _, item := range plan.Items {
		takes = append(takes, store.Take{
			TakeID:         uuid.NewString(),
			ShotID:         identity.SurrogateID,
			TakeType:       item.Type,
			FilePath:       item.DestRel,
			SequenceNumber: item.Sequence,
			Starred:        data.Starred[filepath.Base(item.SrcPath)],
			CreatedDate:    created,
		})
	}

	if err := st.CommitShot(shot, takes); err != nil {
		res.Err = err
		return res
	}

	res.Takes = len(takes)
	summary.TakesCreated += len(takes)
	return res
}

// migrateAssets relocates project-level assets. Per-asset failures are
// collected, not fatal.
func (m *Migrator) migrateAssets(st *store.Store, relocator *media.Relocator, summary *report.RunSummary) error {
	assets, err := m.source.Assets()
	if err != nil {
		return err
	}

	for _, asset := range assets {
		destRel := util.ToProjectPath("media", asset.Category, asset.Name)
		res, err := relocator.Relocate(media.Item{
			SrcPath: asset.AbsPath,
			DestRel: destRel,
			Type:    store.TakeAsset,
			Size:    asset.Size,
		})
		if err != nil {
			m.collector.Errorf("media", destRel, "asset relocation failed: %v", err)
			continue
		}
		if res.Outcome == media.Copied {
			summary.FilesCopied++
			summary.BytesCopied += res.Bytes
		}

		exists, err := st.AssetExistsByPath(destRel)
		if err != nil {
			return err
		}
		if exists {
			continue // already recorded by a previous run
		}

		record := &store.Asset{
			IDKey:       uuid.NewString(),
			AssetName:   asset.Name,
			AssetType:   asset.Category,
			FilePath:    destRel,
			Starred:     asset.Starred,
			CreatedDate: project.UTCTimestamp(),
		}
		if err := st.InsertAsset(record); err != nil {
			m.collector.Errorf("database", destRel, "asset insert failed: %v", err)
			continue
		}
		summary.AssetsCreated++
	}
	return nil
}

func (m *Migrator) writeMigrationLog(summary *report.RunSummary) error {
	file, err := os.Create(m.layout.MigrationLogPath())
	if err != nil {
		return err
	}
	defer file.Close()
	return report.WriteMigrationLog(file, summary, m.collector)
}
