package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Tagger applies release plans to a git repository.
type Tagger struct {
	repo   *git.Repository
	remote string
	logger *slog.Logger
}

// OpenTagger opens the repository at dir. Tags are pushed to remote.
func OpenTagger(dir, remote string, logger *slog.Logger) (*Tagger, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", dir, err)
	}
	return NewTagger(repo, remote, logger), nil
}

// NewTagger wraps an open repository. A nil logger discards logs.
func NewTagger(repo *git.Repository, remote string, logger *slog.Logger) *Tagger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if remote == "" {
		remote = git.DefaultRemoteName
	}
	return &Tagger{repo: repo, remote: remote, logger: logger}
}

// ExistingTags returns the names of all tags in the repository.
func (t *Tagger) ExistingTags() (map[string]bool, error) {
	iter, err := t.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	tags := make(map[string]bool)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags[ref.Name().Short()] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Apply creates the tags of every plan on HEAD and, when push is set, pushes
// them to the remote. Floating tags are force-updated on both sides; the
// version tag is never forced, so a release tag already on the remote at
// another commit fails the push.
func (t *Tagger) Apply(ctx context.Context, plans []Plan, push bool) error {
	if len(plans) == 0 {
		return nil
	}

	head, err := t.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}

	var refSpecs []config.RefSpec
	for _, plan := range plans {
		t.logger.Info("creating tags", "package", plan.Package.Name, "version", plan.Create, "commit", head.Hash().String()[:7])

		if _, err := t.repo.CreateTag(plan.Create, head.Hash(), nil); err != nil {
			return fmt.Errorf("create tag %s: %w", plan.Create, err)
		}
		for _, tag := range plan.Move {
			if err := t.moveTag(tag, head.Hash()); err != nil {
				return err
			}
		}
		refSpecs = append(refSpecs, tagRefSpec(plan.Create, false))
		for _, tag := range plan.Move {
			refSpecs = append(refSpecs, tagRefSpec(tag, true))
		}
	}

	if !push {
		return nil
	}

	t.logger.Info("pushing tags", "remote", t.remote, "count", len(refSpecs))
	err = t.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: t.remote,
		RefSpecs:   refSpecs,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push tags to %s: %w", t.remote, err)
	}
	return nil
}

// moveTag points tag at hash, replacing any existing tag of that name.
func (t *Tagger) moveTag(tag string, hash plumbing.Hash) error {
	if err := t.repo.DeleteTag(tag); err != nil && !errors.Is(err, git.ErrTagNotFound) {
		return fmt.Errorf("delete tag %s: %w", tag, err)
	}
	if _, err := t.repo.CreateTag(tag, hash, nil); err != nil {
		return fmt.Errorf("create tag %s: %w", tag, err)
	}
	return nil
}

// tagRefSpec maps a local tag to the same remote tag.
func tagRefSpec(tag string, force bool) config.RefSpec {
	ref := plumbing.NewTagReferenceName(tag)
	spec := fmt.Sprintf("%s:%s", ref, ref)
	if force {
		spec = "+" + spec
	}
	return config.RefSpec(spec)
}
