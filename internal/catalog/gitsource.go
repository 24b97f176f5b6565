package catalog

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// syncRepo clones url into localPath, or pulls when a clone already exists.
// ref may name a branch; empty means the remote default.
func syncRepo(url, ref, localPath string, log *zap.Logger) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		log.Info("cloning catalog repository",
			zap.String("url", url), zap.String("path", localPath))
		opts := &git.CloneOptions{URL: url, Depth: 1}
		if ref != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
			opts.SingleBranch = true
		}
		if _, err := git.PlainClone(localPath, false, opts); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
		return nil

	case err == nil:
		log.Info("pulling catalog repository", zap.String("path", localPath))
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("open repository at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("worktree of %s: %w", localPath, err)
		}
		pullOpts := &git.PullOptions{RemoteName: "origin"}
		if ref != "" {
			pullOpts.ReferenceName = plumbing.NewBranchReferenceName(ref)
		}
		if err := worktree.Pull(pullOpts); err != nil && err != git.NoErrAlreadyUpToDate {
			return fmt.Errorf("pull %s: %w", localPath, err)
		}
		return nil

	default:
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
}
