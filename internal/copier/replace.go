package copier

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/report"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// ReplaceDir makes dst an exact copy of src: files under dst that src does
// not have are gone afterwards. The copy is staged beside dst and committed
// the way Copy commits a profile, so an interruption leaves either the old
// or the new dst behind a commit marker. A marker left by an earlier
// interrupted commit into dst is recovered first.
//
// source and target are recorded in the commit marker.
func ReplaceDir(ctx context.Context, src, dst string, source, target report.Identity) error {
	return New(nil, nil).replaceDir(ctx, src, dst, source, target)
}

func (o *Orchestrator) replaceDir(ctx context.Context, src, dst string, source, target report.Identity) error {
	if !isDir(src) {
		return errors.Newf("%s is not a directory", src)
	}
	marker := MarkerPath(dst)
	if fileutil.Exists(marker) {
		if err := recoverIncomplete(marker, dst); err != nil {
			return errors.Wrap(err, "recovering incomplete commit")
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	id := o.newID()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	stageDir := filepath.Join(filepath.Dir(dst), stagePrefix+id)
	if err := fileutil.CopyDir(src, stageDir); err != nil {
		_ = os.RemoveAll(stageDir)
		return errors.Wrap(err, "staging directory copy")
	}
	if err := ctx.Err(); err != nil {
		_ = os.RemoveAll(stageDir)
		return err
	}
	return o.commit(id, source, target, stageDir, dst, isDir(dst))
}
