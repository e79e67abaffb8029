package media

import (
	"fmt"
	"path"
	"sort"

	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Item is one planned relocation: copy SrcPath to the project-relative
// DestRel and record a take of Type with the given sequence number.
type Item struct {
	SrcPath  string // absolute source path
	DestRel  string // project-root-relative, forward slashes
	Type     store.TakeType
	Sequence int
	Size     int64
}

// ShotPlan is the full relocation plan for one shot
type ShotPlan struct {
	ShotID int64
	Items  []Item
}

// BuildShotPlan classifies every file of a shot folder and assigns
// destination names. Sequence numbers are contiguous from 1 per family
// in sorted-filename order; a final video and its thumbnail share one
// number. Any unclassifiable file fails the whole shot.
func BuildShotPlan(shotID int64, files []SourceFile) (*ShotPlan, error) {
	classified := make(map[string]Classification, len(files))
	for _, f := range files {
		c, err := ClassifyShotFile(f, files)
		if err != nil {
			return nil, err
		}
		classified[f.RelPath] = c
	}

	// Stable discovery order: sorted by relative path
	ordered := make([]SourceFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RelPath < ordered[j].RelPath })

	plan := &ShotPlan{ShotID: shotID}

	// Video pairs first: number videos in sorted order, thumbnails adopt
	// their video's sequence.
	videoSeq := make(map[string]int)
	seq := 0
	for _, f := range ordered {
		if classified[f.RelPath].Type != store.TakeFinalVideo {
			continue
		}
		seq++
		videoSeq[f.stem()] = seq
		plan.Items = append(plan.Items, Item{
			SrcPath:  f.AbsPath,
			DestRel:  destRel(shotID, "video", seq, f.ext()),
			Type:     store.TakeFinalVideo,
			Sequence: seq,
			Size:     f.Size,
		})
	}
	for _, f := range ordered {
		if classified[f.RelPath].Type != store.TakeVideoWorkflow {
			continue
		}
		n, ok := videoSeq[f.stem()]
		if !ok {
			return nil, fmt.Errorf("%w: thumbnail %q lost its video pairing", util.ErrMediaMigration, f.RelPath)
		}
		plan.Items = append(plan.Items, Item{
			SrcPath:  f.AbsPath,
			DestRel:  destRel(shotID, "video", n, f.ext()),
			Type:     store.TakeVideoWorkflow,
			Sequence: n,
			Size:     f.Size,
		})
	}

	seq = 0
	for _, f := range ordered {
		if classified[f.RelPath].Type != store.TakeBaseImage {
			continue
		}
		seq++
		plan.Items = append(plan.Items, Item{
			SrcPath:  f.AbsPath,
			DestRel:  destRel(shotID, "base", seq, f.ext()),
			Type:     store.TakeBaseImage,
			Sequence: seq,
			Size:     f.Size,
		})
	}

	return plan, nil
}

// destRel renders the canonical destination name media/<id>/<prefix>_NN<ext>
func destRel(shotID int64, prefix string, seq int, ext string) string {
	return util.ToProjectPath("media", fmt.Sprintf("%d", shotID), fmt.Sprintf("%s_%02d%s", prefix, seq, ext))
}

// DestName extracts the filename of a plan item's destination
func (i Item) DestName() string {
	return path.Base(i.DestRel)
}
