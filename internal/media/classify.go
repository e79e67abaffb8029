// Package media classifies legacy media files and relocates them into
// the id-keyed destination layout. Classification is an ordered rule
// table: the first matching rule wins, and a file matching no rule is an
// error, never a silent skip.
package media

import (
	"fmt"
	"path"
	"strings"

	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

var videoExts = map[string]bool{
	".mp4": true,
	".mkv": true,
}

// SourceFile is one discovered file inside a shot's legacy media folder.
// RelPath is slash-separated and relative to the shot folder.
type SourceFile struct {
	AbsPath string
	RelPath string
	Size    int64
}

func (f SourceFile) base() string { return path.Base(f.RelPath) }
func (f SourceFile) ext() string  { return strings.ToLower(path.Ext(f.RelPath)) }
func (f SourceFile) stem() string {
	b := f.base()
	return strings.TrimSuffix(b, path.Ext(b))
}
func (f SourceFile) topLevel() bool { return !strings.Contains(f.RelPath, "/") }

// Classification is the outcome for one file
type Classification struct {
	Type store.TakeType
}

// shotContext carries the sibling information rules need
type shotContext struct {
	videoStems map[string]bool // stems of top-level video files
	imageStems map[string]bool // stems of top-level image files
}

// The rule table. Order is the precedence contract: a video paired with
// a same-stem image is a final video and the image its workflow
// thumbnail; only unpaired top-level images are base images. A video
// without its thumbnail matches no rule and fails the shot.
var shotRules = []struct {
	name    string
	matches func(f SourceFile, ctx *shotContext) bool
	class   Classification
}{
	{
		name: "final video",
		matches: func(f SourceFile, ctx *shotContext) bool {
			return f.topLevel() && videoExts[f.ext()] && ctx.imageStems[f.stem()]
		},
		class: Classification{Type: store.TakeFinalVideo},
	},
	{
		name: "video workflow thumbnail",
		matches: func(f SourceFile, ctx *shotContext) bool {
			return f.topLevel() && imageExts[f.ext()] && ctx.videoStems[f.stem()]
		},
		class: Classification{Type: store.TakeVideoWorkflow},
	},
	{
		name: "base image",
		matches: func(f SourceFile, ctx *shotContext) bool {
			return f.topLevel() && imageExts[f.ext()]
		},
		class: Classification{Type: store.TakeBaseImage},
	},
}

// ClassifyShotFile classifies one file of a shot folder against its
// siblings. An unclassifiable file, including a video without its
// same-stem thumbnail, is a media migration error.
func ClassifyShotFile(f SourceFile, siblings []SourceFile) (Classification, error) {
	ctx := &shotContext{
		videoStems: make(map[string]bool),
		imageStems: make(map[string]bool),
	}
	for _, s := range siblings {
		if !s.topLevel() {
			continue
		}
		switch {
		case videoExts[s.ext()]:
			ctx.videoStems[s.stem()] = true
		case imageExts[s.ext()]:
			ctx.imageStems[s.stem()] = true
		}
	}

	for _, r := range shotRules {
		if r.matches(f, ctx) {
			return r.class, nil
		}
	}
	if f.topLevel() && videoExts[f.ext()] {
		return Classification{}, fmt.Errorf("%w: video %q has no same-stem thumbnail image",
			util.ErrMediaMigration, f.RelPath)
	}
	return Classification{}, fmt.Errorf("%w: cannot classify %q: not a paired video, thumbnail, or top-level image",
		util.ErrMediaMigration, f.RelPath)
}

// IsAssetCategory reports whether name is one of the fixed asset
// subdirectories
func IsAssetCategory(name string) bool {
	switch name {
	case "characters", "locations", "other":
		return true
	}
	return false
}

// IsImage reports whether the path has a recognised image extension
func IsImage(p string) bool {
	return imageExts[strings.ToLower(path.Ext(p))]
}

// IsVideo reports whether the path has a recognised video extension
func IsVideo(p string) bool {
	return videoExts[strings.ToLower(path.Ext(p))]
}
