// Package studio owns the live editing session: the node graph, the code
// shown for it and the preview renders it triggers.
package studio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/efficientmanim/core/internal/catalog"
	"github.com/efficientmanim/core/internal/codegen"
	"github.com/efficientmanim/core/internal/graph"
	"github.com/efficientmanim/core/internal/models"
	"github.com/efficientmanim/core/internal/project"
	"github.com/efficientmanim/core/internal/render"
)

// Snapshot is a copy of the graph taken under the session lock.
type Snapshot struct {
	Nodes    []*models.Node `json:"nodes"`
	Counters map[string]int `json:"counters"`
}

// Studio serialises every graph command. After each mutation it
// regenerates the code and hands that text, never the graph, to the
// render scheduler.
type Studio struct {
	catalog   *catalog.Catalog
	scheduler *render.Scheduler

	mu       sync.Mutex
	graph    *graph.Graph
	override string
	preview  render.Result
}

func New(cat *catalog.Catalog, renderer render.Renderer, debounce time.Duration) *Studio {
	s := &Studio{
		catalog: cat,
		graph:   graph.New(cat),
	}
	s.scheduler = render.NewScheduler(renderer, debounce, s.renderFinished)
	return s
}

func (s *Studio) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Studio) CreateNode(className string, kind models.ClassKind) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.graph.CreateNode(className, kind)
	if err != nil {
		return nil, err
	}
	log.Printf("Created %s", node.Name)
	s.syncLocked()
	return node.Clone(), nil
}

func (s *Studio) SetProperty(id, key string, value models.Value) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.SetProperty(id, key, value); err != nil {
		return nil, err
	}
	s.syncLocked()
	node, _ := s.graph.Node(id)
	return node.Clone(), nil
}

func (s *Studio) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.DeleteNode(id); err != nil {
		return err
	}
	s.syncLocked()
	return nil
}

// MoveNode only changes canvas layout, so no render is triggered.
func (s *Studio) MoveNode(id string, pos models.Position) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.MoveNode(id, pos); err != nil {
		return nil, err
	}
	node, _ := s.graph.Node(id)
	return node.Clone(), nil
}

func (s *Studio) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.Clear()
	s.syncLocked()
}

// NewProject clears the graph and its naming counters.
func (s *Studio) NewProject() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.Reset()
	s.syncLocked()
}

func (s *Studio) Node(id string) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	return node.Clone(), nil
}

func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.graph.Nodes()
	snap := Snapshot{
		Nodes:    make([]*models.Node, len(nodes)),
		Counters: s.graph.Counters(),
	}
	for i, n := range nodes {
		snap.Nodes[i] = n.Clone()
	}
	return snap
}

func (s *Studio) NodeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.IDs()
}

// Code returns the code currently shown: an applied assistant suggestion
// if one is active, otherwise the code generated from the graph.
func (s *Studio) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codeLocked()
}

func (s *Studio) codeLocked() string {
	if s.override != "" {
		return s.override
	}
	return codegen.Generate(s.graph)
}

// ApplyCode replaces the shown code until the next graph mutation and
// renders it straight away.
func (s *Studio) ApplyCode(code string) {
	s.mu.Lock()
	s.override = code
	s.mu.Unlock()

	log.Printf("Applied replacement code.")
	s.scheduler.Dispatch(render.Job{Code: code})
}

// Render skips the debounce window. Final renders use the configured
// output quality.
func (s *Studio) Render(final bool) {
	s.scheduler.Dispatch(render.Job{Code: s.Code(), Final: final})
}

func (s *Studio) RenderStatus() render.Status {
	return s.scheduler.Status()
}

// Preview returns the latest successful preview render.
func (s *Studio) Preview() render.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *Studio) SaveProject() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return project.Save(s.graph)
}

// LoadProject replaces the graph with an archive's content. On error the
// current graph is left untouched.
func (s *Studio) LoadProject(data []byte) error {
	loaded, err := project.Load(data, s.catalog)
	if err != nil {
		log.Printf("Project load failed: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = loaded
	log.Printf("Project loaded: %d nodes", loaded.Len())
	s.syncLocked()
	return nil
}

func (s *Studio) Close() {
	s.scheduler.Close()
}

func (s *Studio) syncLocked() {
	s.override = ""
	s.scheduler.Trigger(render.Job{Code: codegen.Generate(s.graph)})
}

func (s *Studio) renderFinished(job render.Job, result render.Result) {
	if job.Final || !result.Success {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = result
}
