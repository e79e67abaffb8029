package media

import (
	"fmt"
	"os"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Outcome describes what the relocator did with one item
type Outcome int

const (
	// Copied means the file was copied to a fresh destination
	Copied Outcome = iota
	// Satisfied means an identical-size file was already in place
	Satisfied
)

// Result is the relocation result for one plan item
type Result struct {
	Item    Item
	Outcome Outcome
	Bytes   int64
}

// Relocator copies planned items into a project root. Sources are never
// deleted; migration is copy-only so the legacy project stays intact.
type Relocator struct {
	projectRoot string
}

// NewRelocator returns a relocator rooted at the target project
func NewRelocator(projectRoot string) *Relocator {
	return &Relocator{projectRoot: projectRoot}
}

// Relocate executes one plan item. A destination file of identical size
// is treated as already placed, so a re-run after a partial failure is
// idempotent. Any other collision is an error; the operator must clear
// the destination rather than have the migrator guess.
func (r *Relocator) Relocate(item Item) (*Result, error) {
	dest := util.FromProjectPath(r.projectRoot, item.DestRel)

	srcInfo, err := os.Stat(item.SrcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: source %s: %v", util.ErrMediaMigration, item.SrcPath, err)
	}

	if destInfo, err := os.Stat(dest); err == nil {
		if destInfo.Size() == srcInfo.Size() {
			return &Result{Item: item, Outcome: Satisfied, Bytes: destInfo.Size()}, nil
		}
		return nil, fmt.Errorf("%w: destination %s exists with different size (%d vs %d); clear the destination before re-running",
			util.ErrMediaMigration, item.DestRel, destInfo.Size(), srcInfo.Size())
	}

	written, err := util.CopyFileAtomic(item.SrcPath, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: copy %s: %v", util.ErrMediaMigration, item.DestRel, err)
	}
	return &Result{Item: item, Outcome: Copied, Bytes: written}, nil
}

// RelocateShot executes a whole shot plan. The first failure aborts the
// shot; files already copied stay in place and satisfy the re-run.
func (r *Relocator) RelocateShot(plan *ShotPlan) ([]Result, error) {
	results := make([]Result, 0, len(plan.Items))
	for _, item := range plan.Items {
		res, err := r.Relocate(item)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}
