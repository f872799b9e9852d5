package copier

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/logging"
	"github.com/kaiiiiiiiii/bridle/internal/report"
	"github.com/kaiiiiiiiii/bridle/internal/selection"
	"github.com/kaiiiiiiiii/bridle/internal/transform"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// Store locates profile directories.
type Store interface {
	Path(harness, profile string) string
}

// Request describes one copy operation.
type Request struct {
	Source report.Identity
	// Target.Profile defaults to Source.Profile when empty.
	Target  report.Identity
	Options selection.Options

	// Force merges into an existing target profile.
	Force bool
	// DryRun computes the report without writing anything.
	DryRun bool
	// NoTransform keeps names as they are, flagging the invalid ones.
	NoTransform bool
}

// Orchestrator runs copy operations.
type Orchestrator struct {
	registry *capability.Registry
	resolver *harness.Resolver
	store    Store
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
	rename   func(oldpath, newpath string) error
	exchange func(a, b string) error
}

// errExchangeUnsupported means the platform or filesystem cannot swap two
// directories in one step.
var errExchangeUnsupported = errors.New("atomic directory exchange unsupported")

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry replaces the embedded capability registry.
func WithRegistry(r *capability.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLogger sets the logger. Copy falls back to the logger carried by
// its context when none is set.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithIDGenerator sets the operation ID source.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// New returns an Orchestrator that resolves harness adapters with resolver
// and profile directories with store.
func New(resolver *harness.Resolver, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: capability.Default(),
		resolver: resolver,
		store:    store,
		newID:    uuid.NewString,
		now:      time.Now,
		rename:   os.Rename,
		exchange: exchangeDirs,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Copy runs req and returns its report. The report is returned even when
// the operation fails; its Fatal field then describes the failure. Fatal
// errors are *FatalError values.
func (o *Orchestrator) Copy(ctx context.Context, req Request) (*report.Report, error) {
	if req.Target.Profile == "" {
		req.Target.Profile = req.Source.Profile
	}
	rep := report.New(req.Source, req.Target, req.DryRun)
	rep.OperationID = o.newID()

	log := o.logger
	if log == nil {
		log = logging.FromContext(ctx)
	}
	log = log.With("op", rep.OperationID)

	start := time.Now()
	log.Info("copy started",
		"source", req.Source.String(),
		"target", req.Target.String(),
		"dry_run", req.DryRun,
		"force", req.Force,
	)

	if err := o.run(ctx, log, rep, req); err != nil {
		var fe *FatalError
		if errors.As(err, &fe) {
			rep.Fatal = &report.Fatal{
				Kind:    fe.Kind.String(),
				Harness: fe.Harness,
				Profile: fe.Profile,
				Message: err.Error(),
			}
		}
		log.Error("copy failed", "error", err, "duration", time.Since(start))
		return rep, err
	}

	s := rep.Summary()
	log.Info("copy finished",
		"copied", s.Copied,
		"transformed", s.Transformed,
		"skipped", s.Skipped,
		"warned", s.Warned,
		"duration", time.Since(start),
	)
	return rep, nil
}

func (o *Orchestrator) run(ctx context.Context, log *slog.Logger, rep *report.Report, req Request) error {
	src, dst := req.Source, req.Target

	// Resolve.
	srcAdapter, err := o.adapter(SourceNotFound, src)
	if err != nil {
		return err
	}
	dstAdapter, err := o.adapter(TargetHarnessUnsupported, dst)
	if err != nil {
		return err
	}
	desc, err := o.registry.Descriptor(dst.Harness)
	if err != nil {
		return fatal(TargetHarnessUnsupported, dst.Harness, "", err)
	}

	srcDir := o.store.Path(src.Harness, src.Profile)
	if !isDir(srcDir) {
		return fatal(SourceNotFound, src.Harness, src.Profile, nil)
	}
	dstDir := o.store.Path(dst.Harness, dst.Profile)
	// An interrupted commit takes precedence: the target may be missing or
	// half replaced.
	marker := MarkerPath(dstDir)
	if fileutil.Exists(marker) {
		if !req.Force {
			return fatal(CommitFailed, dst.Harness, dst.Profile,
				errors.Wrapf(ErrIncompleteCommit, "marker %s", marker))
		}
		if !req.DryRun {
			log.Warn("recovering from incomplete commit", "marker", marker)
			if err := recoverIncomplete(marker, dstDir); err != nil {
				return fatal(CommitFailed, dst.Harness, dst.Profile, err)
			}
		}
	}
	exists := isDir(dstDir)
	if exists && !req.Force {
		return fatal(TargetAlreadyExists, dst.Harness, dst.Profile, nil)
	}
	log.Debug("identities resolved", "source_dir", srcDir, "target_dir", dstDir, "target_exists", exists)

	if err := ctx.Err(); err != nil {
		return err
	}

	// Extract.
	profile, err := srcAdapter.Extract(ctx, srcDir)
	if err != nil {
		if errors.Is(err, harness.ErrNotFound) {
			return fatal(SourceNotFound, src.Harness, src.Profile, err)
		}
		return errors.Wrapf(err, "extracting %s", src)
	}
	if verr := canonical.Validate(profile); verr != nil {
		log.Warn("source profile has invalid resources", "error", verr)
	}
	log.Debug("profile extracted", "resources", profile.Count())

	// Filter.
	filtered, err := selection.Apply(profile, req.Options)
	if err != nil {
		if errors.Is(err, selection.ErrNothingToCopy) {
			return fatal(NothingToCopy, src.Harness, src.Profile, nil)
		}
		return err
	}

	// Adapt.
	out := o.adapt(rep, filtered, desc, src.Harness, req.NoTransform)
	log.Debug("resources adapted", "accepted", out.Count(), "entries", len(rep.Entries()))

	if req.DryRun {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !rep.Accepted() {
		log.Info("target accepts none of the selected resources; nothing written")
		return nil
	}

	// Stage.
	stageDir := filepath.Join(filepath.Dir(dstDir), stagePrefix+rep.OperationID)
	if err := o.stage(ctx, dstAdapter, stageDir, dstDir, exists, out); err != nil {
		_ = os.RemoveAll(stageDir)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fatal(StageWriteFailed, dst.Harness, dst.Profile, err)
	}
	log.Debug("profile staged", "dir", stageDir)

	if err := ctx.Err(); err != nil {
		_ = os.RemoveAll(stageDir)
		return err
	}

	// Commit.
	if err := o.commit(rep.OperationID, rep.Source, rep.Target, stageDir, dstDir, exists); err != nil {
		return fatal(CommitFailed, dst.Harness, dst.Profile, err)
	}
	log.Debug("profile committed", "dir", dstDir)
	return nil
}

// adapter resolves the adapter for id, failing with kind when the harness
// is unknown.
func (o *Orchestrator) adapter(kind FatalKind, id report.Identity) (harness.Adapter, error) {
	profile := ""
	if kind == SourceNotFound {
		profile = id.Profile
	}
	if !o.registry.Known(id.Harness) {
		return nil, fatal(kind, id.Harness, profile, capability.ErrUnknownHarness)
	}
	a, err := o.resolver.Get(id.Harness)
	if err != nil {
		return nil, fatal(kind, id.Harness, profile, err)
	}
	return a, nil
}

// adapt runs every resource of p through the registry check and the
// transformation strategies, recording outcomes in rep and returning the
// accepted resources.
func (o *Orchestrator) adapt(rep *report.Report, p *canonical.Profile, desc capability.Descriptor, source string, noTransform bool) *canonical.Profile {
	engine := transform.NewEngine(transform.Target{
		Source:      source,
		Descriptor:  desc,
		Tools:       o.registry,
		NoTransform: noTransform,
	})
	out := canonical.New()

	for _, k := range canonical.Kinds() {
		if p.Len(k) == 0 {
			continue
		}
		if !desc.Support(k).OK() {
			for _, name := range p.Names(k) {
				rep.Add(k, transform.Unsupported(name))
			}
			continue
		}

		switch k {
		case canonical.KindMCP:
			for _, s := range p.MCPServers {
				r, oc := engine.MCPServer(s)
				rep.Add(k, oc)
				out.MCPServers = append(out.MCPServers, r)
			}
		case canonical.KindSkills:
			for _, s := range p.Skills {
				r, oc := engine.Skill(s)
				rep.Add(k, oc)
				out.Skills = append(out.Skills, r)
			}
		case canonical.KindAgents:
			for _, a := range p.Agents {
				r, oc := engine.Agent(a)
				rep.Add(k, oc)
				out.Agents = append(out.Agents, r)
			}
		case canonical.KindCommands:
			for _, c := range p.Commands {
				r, oc := engine.Command(c)
				rep.Add(k, oc)
				out.Commands = append(out.Commands, r)
			}
		case canonical.KindSettings:
			settings, outcomes := engine.Settings(p.Settings)
			for _, oc := range outcomes {
				rep.Add(k, oc)
			}
			out.Settings = settings
		}
	}
	return out
}

func (o *Orchestrator) stage(ctx context.Context, w harness.Adapter, stageDir, dstDir string, seed bool, p *canonical.Profile) error {
	if err := os.MkdirAll(filepath.Dir(stageDir), 0o755); err != nil {
		return errors.Wrap(err, "creating profile parent directory")
	}
	if seed {
		if err := fileutil.CopyDir(dstDir, stageDir); err != nil {
			return errors.Wrap(err, "seeding staging directory")
		}
	} else if err := os.Mkdir(stageDir, 0o755); err != nil {
		return errors.Wrap(err, "creating staging directory")
	}
	return w.Write(ctx, stageDir, p)
}

// commit swaps the staged profile into place. An existing profile is
// exchanged with the staged one where the filesystem allows it, so the
// target path never disappears; otherwise it is moved aside first. The
// marker stays behind if any step fails.
func (o *Orchestrator) commit(id string, source, target report.Identity, stageDir, dstDir string, exists bool) error {
	files, err := fileutil.HashTree(stageDir)
	if err != nil {
		_ = os.RemoveAll(stageDir)
		return errors.Wrap(err, "hashing staged files")
	}

	m := &Manifest{
		Version:     ManifestVersion,
		OperationID: id,
		CreatedAt:   o.now().UTC(),
		Source:      source,
		Target:      target,
		StageDir:    stageDir,
		Files:       files,
	}
	if exists {
		m.PreviousDir = filepath.Join(filepath.Dir(dstDir), previousPrefix+id)
	}

	marker := MarkerPath(dstDir)
	if err := writeManifest(marker, m); err != nil {
		_ = os.RemoveAll(stageDir)
		return errors.Wrap(err, "writing commit marker")
	}

	if exists {
		err := o.exchange(stageDir, dstDir)
		if err == nil {
			// The staging directory now holds the previous profile.
			if err := os.RemoveAll(stageDir); err != nil {
				return errors.Wrap(err, "removing previous profile")
			}
			return errors.Wrap(os.Remove(marker), "removing commit marker")
		}
		if !errors.Is(err, errExchangeUnsupported) {
			return err
		}
		if err := o.rename(dstDir, m.PreviousDir); err != nil {
			return errors.Wrap(err, "moving existing profile aside")
		}
	}
	if err := o.rename(stageDir, dstDir); err != nil {
		if exists {
			if rerr := o.rename(m.PreviousDir, dstDir); rerr != nil {
				err = errors.CombineErrors(err, errors.Wrap(rerr, "restoring existing profile"))
			}
		}
		return errors.Wrap(err, "moving staged profile into place")
	}
	if exists {
		if err := os.RemoveAll(m.PreviousDir); err != nil {
			return errors.Wrap(err, "removing previous profile")
		}
	}
	if err := os.Remove(marker); err != nil {
		return errors.Wrap(err, "removing commit marker")
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
