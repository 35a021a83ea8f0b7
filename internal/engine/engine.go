package engine

import (
	"sync"

	"github.com/shodhmemory/engine/internal/embedder"
	"github.com/shodhmemory/engine/internal/entities"
	"github.com/shodhmemory/engine/internal/graph"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/maintenance"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/internal/vector"
	"github.com/shodhmemory/engine/pkg/config"
)

var log = logging.GetLogger("engine")

// indexRegistry owns one in-memory vector index per user. The index is
// rebuilt from storage at startup (Warm) and kept current on every
// Remember/Forget call; it satisfies maintenance.VectorIndexes.
type indexRegistry struct {
	mu     sync.Mutex
	cfg    vector.Config
	byUser map[string]*vector.Index
}

func newIndexRegistry(cfg vector.Config) *indexRegistry {
	return &indexRegistry{cfg: cfg, byUser: make(map[string]*vector.Index)}
}

// IndexFor implements maintenance.VectorIndexes: returns nil if the
// user has no index yet, never creates one.
func (r *indexRegistry) IndexFor(userID string) *vector.Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUser[userID]
}

func (r *indexRegistry) getOrCreate(userID string) *vector.Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byUser[userID]
	if !ok {
		idx = vector.New(r.cfg)
		r.byUser[userID] = idx
	}
	return idx
}

// Engine is the facade over every collaborator package: storage, the
// vector index, the associative graph, tiering, importance, and the
// embedder/entity-extractor contracts. Concurrency safety is delegated
// to its collaborators (the store's bbolt transactions, the vector
// index's RWMutex, and a per-engine write lock that serializes writes
// for a single id).
type Engine struct {
	cfg      config.Config
	store    *storage.Store
	graph    *graph.Service
	indexes  *indexRegistry
	embedder embedder.Embedder
	entities entities.Extractor
	maint    *maintenance.Runner

	writeMu sync.Mutex // serializes per-id writes
}

// New wires an Engine over an already-open store and the given
// embedder/entity-extractor collaborators.
func New(cfg config.Config, store *storage.Store, emb embedder.Embedder, ext entities.Extractor) *Engine {
	graphSvc := graph.NewService(store, cfg.Graph)
	indexes := newIndexRegistry(vector.Config{
		MaxDegree:       cfg.Vector.MaxDegree,
		BuildBeamWidth:  cfg.Vector.BuildBeamWidth,
		SearchBeamWidth: cfg.Vector.SearchBeamWidth,
		Alpha:           cfg.Vector.Alpha,
	})
	e := &Engine{
		cfg:      cfg,
		store:    store,
		graph:    graphSvc,
		indexes:  indexes,
		embedder: emb,
		entities: ext,
	}
	e.maint = maintenance.NewRunner(store, graphSvc, indexes, cfg)
	return e
}

// Maintenance returns the background maintenance runner, for the
// daemon/CLI to drive on a ticker.
func (e *Engine) Maintenance() *maintenance.Runner {
	return e.maint
}

// Warm rebuilds every user's in-memory vector index from storage. The
// index itself is never persisted to disk — durability is rebuild-on-
// start, matching an in-process embedded-index pattern; this must run
// once before serving recall traffic after a restart.
func (e *Engine) Warm() error {
	users, err := e.store.ListUsers()
	if err != nil {
		return err
	}
	for _, user := range users {
		ids, err := e.store.ListIDsForUser(user)
		if err != nil {
			return err
		}
		records, err := e.store.GetMany(user, ids)
		if err != nil {
			return err
		}
		idx := e.indexes.getOrCreate(user)
		for _, r := range records {
			if hasSignal(r.Embedding) {
				idx.Insert(r.ID, r.Embedding)
			}
		}
	}
	return nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func hasSignal(vec []float32) bool {
	for _, x := range vec {
		if x != 0 {
			return true
		}
	}
	return false
}
