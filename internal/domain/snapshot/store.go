package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/xref"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

const (
	// Latest selects the snapshot named by the CURRENT pointer.
	Latest = "latest"

	rootPrefix   = "snapshots/"
	dataName     = "graph.json.gz"
	manifestName = "MANIFEST.json"
	currentKey   = "CURRENT"

	versionLayout = "20060102T150405Z"
)

// Counts are entity totals recorded in a manifest.
type Counts struct {
	Compounds       int `json:"compounds"`
	Reactions       int `json:"reactions"`
	Compartments    int `json:"compartments"`
	CrossReferences int `json:"cross_references"`
}

// Manifest describes one snapshot.
type Manifest struct {
	Version   string            `json:"version"`
	Format    int               `json:"format"`
	CreatedAt time.Time         `json:"created_at"`
	DataKey   string            `json:"data_key"`
	SHA256    string            `json:"sha256"`
	Size      int64             `json:"size"`
	Counts    Counts            `json:"counts"`
	Report    *xref.BuildReport `json:"report,omitempty"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for version stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store saves and loads snapshots through a Backend.
type Store struct {
	backend Backend
	logger  logging.Logger
	now     func() time.Time
}

// NewStore returns a Store over backend.
func NewStore(backend Backend, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  logging.OrDefault(logger).Named("snapshot"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewVersion returns a sortable version string: a UTC timestamp followed by
// a short random suffix.
func NewVersion(t time.Time) string {
	return t.UTC().Format(versionLayout) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func dataKey(version string) string     { return rootPrefix + version + "/" + dataName }
func manifestKey(version string) string { return rootPrefix + version + "/" + manifestName }

// Save writes g as a new snapshot and publishes it as current.  On error the
// previously current snapshot stays current.
func (s *Store) Save(ctx context.Context, g *xref.Graph, report *xref.BuildReport) (string, error) {
	if g == nil {
		return "", pkgerrors.InvalidParam("nil graph")
	}
	created := s.now().UTC()
	version := NewVersion(created)

	raw, err := json.Marshal(g)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeSerialization, "encode graph")
	}
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeSerialization, "compress graph")
	}
	if _, err := zw.Write(raw); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeSerialization, "compress graph")
	}
	if err := zw.Close(); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeSerialization, "compress graph")
	}
	data := buf.Bytes()
	sum := sha256.Sum256(data)

	counts := g.Counts()
	m := Manifest{
		Version:   version,
		Format:    xref.GraphFormatVersion,
		CreatedAt: created,
		DataKey:   dataKey(version),
		SHA256:    hex.EncodeToString(sum[:]),
		Size:      int64(len(data)),
		Counts: Counts{
			Compounds:       counts[xref.KindCompound],
			Reactions:       counts[xref.KindReaction],
			Compartments:    counts[xref.KindCompartment],
			CrossReferences: g.CrossReferenceCount(),
		},
	}
	if report != nil {
		rep := *report
		rep.Version = version
		m.Report = &rep
	}
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeSerialization, "encode manifest")
	}

	if err := s.put(ctx, m.DataKey, data); err != nil {
		return "", err
	}
	if err := s.put(ctx, manifestKey(version), manifest); err != nil {
		return "", err
	}
	if err := s.put(ctx, currentKey, []byte(version+"\n")); err != nil {
		return "", err
	}

	s.logger.Info("snapshot saved",
		logging.SnapshotVersion(version),
		logging.Int64("bytes", m.Size),
		logging.Int("entities", g.Len()))
	return version, nil
}

func (s *Store) put(ctx context.Context, key string, b []byte) error {
	if err := s.backend.Put(ctx, key, bytes.NewReader(b), int64(len(b))); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrCodeSnapshotWriteFailed, "write snapshot object").WithDetail(key)
	}
	return nil
}

// Current returns the version CURRENT points at.
func (s *Store) Current(ctx context.Context) (string, error) {
	b, err := s.read(ctx, currentKey)
	if err != nil {
		return "", s.notFound(Latest, err)
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", pkgerrors.SnapshotNotFound(Latest, errors.New("empty CURRENT pointer"))
	}
	return v, nil
}

// Manifest reads the manifest of version, or of the current snapshot when
// version is "latest" or empty.
func (s *Store) Manifest(ctx context.Context, version string) (*Manifest, error) {
	version, err := s.resolve(ctx, version)
	if err != nil {
		return nil, err
	}
	b, err := s.read(ctx, manifestKey(version))
	if err != nil {
		return nil, s.notFound(version, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, pkgerrors.SnapshotNotFound(version, fmt.Errorf("corrupt manifest: %w", err))
	}
	if m.Version != version {
		return nil, pkgerrors.SnapshotNotFound(version, fmt.Errorf("manifest names version %q", m.Version))
	}
	return &m, nil
}

// Load reads and verifies a snapshot.  A missing manifest, missing data or a
// checksum mismatch all fail with ErrCodeSnapshotNotFound.
func (s *Store) Load(ctx context.Context, version string) (*xref.Graph, *Manifest, error) {
	m, err := s.Manifest(ctx, version)
	if err != nil {
		return nil, nil, err
	}
	if m.Format != xref.GraphFormatVersion {
		return nil, nil, pkgerrors.SnapshotNotFound(m.Version, fmt.Errorf("unsupported format %d", m.Format))
	}
	key := m.DataKey
	if key == "" {
		key = dataKey(m.Version)
	}
	data, err := s.read(ctx, key)
	if err != nil {
		return nil, nil, s.notFound(m.Version, err)
	}
	sum := sha256.Sum256(data)
	if int64(len(data)) != m.Size || hex.EncodeToString(sum[:]) != m.SHA256 {
		return nil, nil, pkgerrors.SnapshotNotFound(m.Version, errors.New("checksum mismatch"))
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, pkgerrors.SnapshotNotFound(m.Version, err)
	}
	defer zr.Close()
	var g xref.Graph
	if err := json.NewDecoder(zr).Decode(&g); err != nil {
		return nil, nil, pkgerrors.SnapshotNotFound(m.Version, fmt.Errorf("decode graph: %w", err))
	}

	s.logger.Debug("snapshot loaded", logging.SnapshotVersion(m.Version), logging.Int("entities", g.Len()))
	return &g, m, nil
}

// List returns the versions that have a manifest, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.backend.List(ctx, rootPrefix)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeExternalService, "list snapshots")
	}
	var versions []string
	for _, k := range keys {
		if path.Base(k) != manifestName {
			continue
		}
		v := strings.TrimSuffix(strings.TrimPrefix(k, rootPrefix), "/"+manifestName)
		if v != "" && !strings.Contains(v, "/") {
			versions = append(versions, v)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func (s *Store) resolve(ctx context.Context, version string) (string, error) {
	if version == "" || version == Latest {
		return s.Current(ctx)
	}
	return version, nil
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Store) notFound(version string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return pkgerrors.SnapshotNotFound(version, err)
}

//Personal.AI order the ending
