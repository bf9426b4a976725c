package driver

import (
	"context"

	"github.com/cockroachdb/errors"

	"shadeweave/internal/codegen"
	"shadeweave/internal/diag"
	"shadeweave/internal/observ"
	"shadeweave/internal/provenance"
	"shadeweave/internal/scene"
	"shadeweave/internal/source"
	"shadeweave/internal/trace"
)

// Loaded is a scene read from disk together with the digest of its
// normalised bytes and what normalisation was applied to them.
type Loaded struct {
	Path  string
	Scene *scene.Scene
	Hash  Digest
	Flags source.FileFlags
}

// ReportNormalization emits one info diagnostic per normalisation applied
// while reading the scene file.
func (l *Loaded) ReportNormalization(r diag.Reporter) {
	if l == nil {
		return
	}
	if l.Flags&source.FileHadBOM != 0 {
		diag.ReportInfo(r, diag.SceneStrippedBOM, diag.Nowhere(), l.Path+": UTF-8 byte order mark removed").Emit()
	}
	if l.Flags&source.FileNormalizedCRLF != 0 {
		diag.ReportInfo(r, diag.SceneNormalizedCRLF, diag.Nowhere(), l.Path+": CRLF line endings converted to LF").Emit()
	}
}

// LoadScene reads and decodes the scene at path.
func LoadScene(ctx context.Context, path string, timer *observ.Timer) (*Loaded, error) {
	if trace.SceneOf(ctx) == "" {
		ctx = trace.WithScene(ctx, path)
	}
	span, _ := trace.StartSpan(ctx, trace.ScopePass, "load")
	defer span.End("")

	var loaded *Loaded
	err := timer.Measure("load", func() error {
		format, err := scene.FormatOf(path)
		if err != nil {
			return err
		}
		data, flags, err := source.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "read scene")
		}
		sc, err := scene.Decode(data, format)
		if err != nil {
			return errors.Wrapf(err, "decode %s", path)
		}
		loaded = &Loaded{Path: path, Scene: sc, Hash: DigestOf(data), Flags: flags}
		return nil
	})
	if err != nil {
		span.WithExtra("error", err.Error())
		return nil, err
	}
	if loaded.Flags != 0 {
		span.WithExtra("normalized", loaded.Flags.String())
	}
	return loaded, nil
}

// SceneFragments registers the authored code of every entity of sc under the ID
// generation would give it, so that validation diagnostics can be labelled
// before anything was generated.
func SceneFragments(path string, sc *scene.Scene) *source.FragmentSet {
	fs := source.NewFragmentSet(path)
	for i, o := range sc.Objects {
		fs.Add(provenance.Object(i), o.Name, o.Code)
	}
	for i, m := range sc.Materials {
		fs.Add(provenance.Material(i), m.Name, m.Code)
	}
	for i, l := range sc.Library {
		fs.Add(provenance.Library(i), l.Name, l.Code)
	}
	return fs
}

// Document returns the generated document of the scene at path. A cached
// document is used when neither the scene file nor the generator layout has
// changed since it was written; otherwise the scene is generated again and the
// cache refreshed.
func Document(ctx context.Context, cache *DiskCache, path string, gen codegen.Generator) (*codegen.Output, bool, error) {
	ctx = trace.WithScene(ctx, path)
	loaded, err := LoadScene(ctx, path, nil)
	if err != nil {
		return nil, false, err
	}
	key := KeyFor(path)
	var payload DiskPayload
	if ok, err := cache.Get(key, &payload); err == nil && ok && payload.SceneHash == loaded.Hash && payload.GeneratorHash == gen.Fingerprint() {
		out, err := payload.Output()
		if err == nil {
			trace.Point(ctx, trace.ScopePass, "cache", "hit")
			return out, true, nil
		}
	}

	gen.Path = path
	out, err := gen.GenerateContext(ctx, loaded.Scene)
	if err != nil {
		return nil, false, err
	}
	if err := cache.Put(key, PayloadFromOutput(path, loaded.Hash, out)); err != nil {
		return nil, false, errors.Wrap(err, "write document cache")
	}
	return out, false, nil
}
